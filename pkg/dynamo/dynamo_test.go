package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockTableAPI struct {
	mock.Mock
}

func (m *mockTableAPI) ListTables(ctx context.Context, params *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ListTablesOutput), args.Error(1)
}

func (m *mockTableAPI) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

func (m *mockTableAPI) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.CreateTableOutput), args.Error(1)
}

func TestClient_TableNames_FollowsPages(t *testing.T) {
	api := new(mockTableAPI)
	c := newClient(nil, api, zaptest.NewLogger(t))

	api.On("ListTables", mock.Anything, mock.MatchedBy(func(in *dynamodb.ListTablesInput) bool {
		return in.ExclusiveStartTableName == nil
	})).Return(&dynamodb.ListTablesOutput{
		TableNames:             []string{"accounts", "sessions"},
		LastEvaluatedTableName: aws.String("sessions"),
	}, nil).Once()
	api.On("ListTables", mock.Anything, mock.MatchedBy(func(in *dynamodb.ListTablesInput) bool {
		return aws.ToString(in.ExclusiveStartTableName) == "sessions"
	})).Return(&dynamodb.ListTablesOutput{TableNames: []string{"users"}}, nil).Once()

	names, err := c.TableNames(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", "sessions", "users"}, names)
	api.AssertExpectations(t)
}

func TestClient_TableNames_Error(t *testing.T) {
	api := new(mockTableAPI)
	c := newClient(nil, api, zaptest.NewLogger(t))

	api.On("ListTables", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := c.TableNames(context.Background())
	assert.ErrorContains(t, err, "failed to list tables")
}

func TestClient_EnsureTable_Exists(t *testing.T) {
	api := new(mockTableAPI)
	c := newClient(nil, api, zaptest.NewLogger(t))

	api.On("DescribeTable", mock.Anything, mock.Anything).Return(&dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableStatus: types.TableStatusActive},
	}, nil)

	created, err := c.EnsureTable(context.Background(), "users")

	require.NoError(t, err)
	assert.False(t, created)
	api.AssertNotCalled(t, "CreateTable", mock.Anything, mock.Anything)
}

func TestClient_EnsureTable_Creates(t *testing.T) {
	api := new(mockTableAPI)
	c := newClient(nil, api, zaptest.NewLogger(t))

	api.On("DescribeTable", mock.Anything, mock.Anything).
		Return(nil, &types.ResourceNotFoundException{Message: aws.String("not found")}).Once()
	api.On("CreateTable", mock.Anything, mock.MatchedBy(func(in *dynamodb.CreateTableInput) bool {
		return aws.ToString(in.TableName) == "users" &&
			len(in.KeySchema) == 1 &&
			aws.ToString(in.KeySchema[0].AttributeName) == "id"
	})).Return(&dynamodb.CreateTableOutput{}, nil)
	api.On("DescribeTable", mock.Anything, mock.Anything).Return(&dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableStatus: types.TableStatusActive},
	}, nil)

	created, err := c.EnsureTable(context.Background(), "users")

	require.NoError(t, err)
	assert.True(t, created)
	api.AssertExpectations(t)
}

func TestClient_EnsureTable_DescribeError(t *testing.T) {
	api := new(mockTableAPI)
	c := newClient(nil, api, zaptest.NewLogger(t))

	api.On("DescribeTable", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := c.EnsureTable(context.Background(), "users")
	assert.ErrorContains(t, err, "failed to describe table users")
}
