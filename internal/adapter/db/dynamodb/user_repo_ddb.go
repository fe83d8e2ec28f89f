package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"harness-sample-app/internal/domain/user"
	pkgerrors "harness-sample-app/pkg/errors"
)

// counterID is the key of the item holding the id sequence. User ids start at 1.
const counterID = 0

// API is the subset of the DynamoDB client used by UserRepoDDB.
type API interface {
	GetItem(ctx context.Context, params *awsdynamodb.GetItemInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *awsdynamodb.PutItemInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *awsdynamodb.UpdateItemInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *awsdynamodb.ScanInput, optFns ...func(*awsdynamodb.Options)) (*awsdynamodb.ScanOutput, error)
}

// userItem is the DynamoDB representation of a user.
type userItem struct {
	ID    int64  `dynamodbav:"id"`
	Name  string `dynamodbav:"name"`
	Email string `dynamodbav:"email"`
}

type counterItem struct {
	Seq int64 `dynamodbav:"seq"`
}

// UserRepoDDB stores users in a DynamoDB table keyed by a numeric id.
// Ids come from an atomic counter item in the same table, so they are
// never reused even if the user item write fails.
type UserRepoDDB struct {
	api   API
	table string
	log   *zap.Logger
}

// NewUserRepoDDB creates a new DynamoDB-backed user repository.
func NewUserRepoDDB(api API, table string, log *zap.Logger) *UserRepoDDB {
	return &UserRepoDDB{api: api, table: table, log: log}
}

func idKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

// nextID atomically increments the sequence counter and returns the new value.
func (r *UserRepoDDB) nextID(ctx context.Context) (int64, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Add(expression.Name("seq"), expression.Value(1))).
		Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build counter expression: %w", err)
	}

	out, err := r.api.UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       idKey(counterID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment user id counter: %w", err)
	}

	var counter counterItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &counter); err != nil {
		return 0, fmt.Errorf("failed to unmarshal user id counter: %w", err)
	}
	if counter.Seq <= counterID {
		return 0, errors.New("user id counter returned no value")
	}
	return counter.Seq, nil
}

// Create assigns the next id and writes the user item.
func (r *UserRepoDDB) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	id, err := r.nextID(ctx)
	if err != nil {
		r.log.Error("failed to allocate user id", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	item, err := attributevalue.MarshalMap(userItem{ID: id, Name: u.Name, Email: u.Email})
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to marshal user", err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).
		Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build put condition", err)
	}

	_, err = r.api.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      cond.Condition(),
		ExpressionAttributeNames: cond.Names(),
	})
	if err != nil {
		r.log.Error("failed to put user item", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	r.log.Info("user created in dynamodb", zap.Int64("id", id), zap.String("table", r.table))
	u.ID = id
	return &user.User{ID: id, Name: u.Name, Email: u.Email}, nil
}

// GetByID reads a single user item with a strongly consistent read.
func (r *UserRepoDDB) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if id <= counterID {
		return nil, pkgerrors.ErrUserNotFound
	}

	out, err := r.api.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.log.Error("failed to get user item", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrUserNotFound
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal user", err)
	}
	return &user.User{ID: item.ID, Name: item.Name, Email: item.Email}, nil
}

// List scans every user item and returns them ordered by id.
func (r *UserRepoDDB) List(ctx context.Context) ([]user.User, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("id").GreaterThan(expression.Value(counterID))).
		Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build scan filter", err)
	}

	p := awsdynamodb.NewScanPaginator(r.api, &awsdynamodb.ScanInput{
		TableName:                 aws.String(r.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})

	users := make([]user.User, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			r.log.Error("failed to scan users", zap.Error(err))
			return nil, pkgerrors.NewInternalError("failed to list users", err)
		}

		var items []userItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, pkgerrors.NewInternalError("failed to unmarshal users", err)
		}
		for _, it := range items {
			users = append(users, user.User{ID: it.ID, Name: it.Name, Email: it.Email})
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
