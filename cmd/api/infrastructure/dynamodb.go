package infrastructure

import (
	"context"
	"fmt"

	"harness-sample-app/internal/config"
	"harness-sample-app/pkg/dynamo"

	"go.uber.org/zap"
)

// NewDynamoDB creates a DynamoDB client and, when configured, makes sure
// the users table exists before the server accepts traffic.
func NewDynamoDB(ctx context.Context, cfg *config.Config, l *zap.Logger) (*dynamo.Client, error) {
	client, err := dynamo.NewClient(ctx, dynamo.Config{
		Region:          cfg.DynamoDB.Region,
		Endpoint:        cfg.DynamoDB.Endpoint,
		AccessKeyID:     cfg.DynamoDB.AccessKeyID,
		SecretAccessKey: cfg.DynamoDB.SecretAccessKey,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	if cfg.DynamoDB.CreateTable {
		created, err := client.EnsureTable(ctx, cfg.DynamoDB.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure table %s: %w", cfg.DynamoDB.Table, err)
		}
		if created {
			l.Info("DynamoDB table created", zap.String("table", cfg.DynamoDB.Table))
		}
	}

	tables, err := client.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list DynamoDB tables: %w", err)
	}
	l.Info("DynamoDB connected successfully", zap.Strings("tables", tables))

	return client, nil
}
