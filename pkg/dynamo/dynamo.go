package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// tableWaitTimeout bounds how long EnsureTable waits for a new table to become active.
const tableWaitTimeout = 2 * time.Minute

// Config holds DynamoDB connection configuration.
type Config struct {
	Region          string
	Endpoint        string // optional override, e.g. DynamoDB Local
	AccessKeyID     string // empty falls back to the default credential chain
	SecretAccessKey string
}

// TableAPI is the subset of the DynamoDB API used for table management.
type TableAPI interface {
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Client wraps dynamodb.Client with table helpers.
type Client struct {
	*dynamodb.Client
	tables TableAPI
	log    *zap.Logger
}

// NewClient loads AWS configuration for the given region and credentials
// and returns a DynamoDB client pointed at cfg.Endpoint when set.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	log.Info("DynamoDB client configured",
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("static_credentials", cfg.AccessKeyID != ""),
	)

	return newClient(client, client, log), nil
}

func newClient(client *dynamodb.Client, tables TableAPI, log *zap.Logger) *Client {
	return &Client{Client: client, tables: tables, log: log}
}

// TableNames returns the names of all tables visible to the client.
func (c *Client) TableNames(ctx context.Context) ([]string, error) {
	var names []string
	p := dynamodb.NewListTablesPaginator(c.tables, &dynamodb.ListTablesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		names = append(names, page.TableNames...)
	}
	return names, nil
}

// EnsureTable creates a table keyed by a numeric "id" attribute when it
// does not exist yet. It reports whether the table was created.
func (c *Client) EnsureTable(ctx context.Context, name string) (bool, error) {
	_, err := c.tables.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err == nil {
		return false, nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return false, fmt.Errorf("failed to describe table %s: %w", name, err)
	}

	c.log.Info("creating DynamoDB table", zap.String("table", name))
	_, err = c.tables.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create table %s: %w", name, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(c.tables)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, tableWaitTimeout); err != nil {
		return true, fmt.Errorf("table %s did not become active: %w", name, err)
	}
	return true, nil
}
