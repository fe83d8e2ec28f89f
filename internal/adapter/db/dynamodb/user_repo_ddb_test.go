package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"harness-sample-app/internal/domain/user"
	pkgerrors "harness-sample-app/pkg/errors"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetItem(ctx context.Context, params *awsdynamodb.GetItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awsdynamodb.GetItemOutput), args.Error(1)
}

func (m *mockAPI) PutItem(ctx context.Context, params *awsdynamodb.PutItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awsdynamodb.PutItemOutput), args.Error(1)
}

func (m *mockAPI) UpdateItem(ctx context.Context, params *awsdynamodb.UpdateItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awsdynamodb.UpdateItemOutput), args.Error(1)
}

func (m *mockAPI) Scan(ctx context.Context, params *awsdynamodb.ScanInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awsdynamodb.ScanOutput), args.Error(1)
}

func numAttr(v string) types.AttributeValue { return &types.AttributeValueMemberN{Value: v} }
func strAttr(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func userAttrs(id, name, email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":    numAttr(id),
		"name":  strAttr(name),
		"email": strAttr(email),
	}
}

func keyIs(key map[string]types.AttributeValue, id string) bool {
	n, ok := key["id"].(*types.AttributeValueMemberN)
	return ok && n.Value == id
}

func setupRepo(t *testing.T) (*UserRepoDDB, *mockAPI) {
	api := new(mockAPI)
	return NewUserRepoDDB(api, "users", zaptest.NewLogger(t)), api
}

func TestUserRepoDDB_Create(t *testing.T) {
	repo, api := setupRepo(t)
	ctx := context.Background()

	api.On("UpdateItem", ctx, mock.MatchedBy(func(in *awsdynamodb.UpdateItemInput) bool {
		return aws.ToString(in.TableName) == "users" && keyIs(in.Key, "0") &&
			in.ReturnValues == types.ReturnValueUpdatedNew
	})).Return(&awsdynamodb.UpdateItemOutput{
		Attributes: map[string]types.AttributeValue{"seq": numAttr("3")},
	}, nil)
	api.On("PutItem", ctx, mock.MatchedBy(func(in *awsdynamodb.PutItemInput) bool {
		name, _ := in.Item["name"].(*types.AttributeValueMemberS)
		return keyIs(in.Item, "3") && name != nil && name.Value == "Test User" &&
			in.ConditionExpression != nil
	})).Return(&awsdynamodb.PutItemOutput{}, nil)

	in := &user.User{Name: "Test User", Email: "test@example.com"}
	created, err := repo.Create(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, &user.User{ID: 3, Name: "Test User", Email: "test@example.com"}, created)
	assert.Equal(t, int64(3), in.ID)
	api.AssertExpectations(t)
}

func TestUserRepoDDB_Create_CounterError(t *testing.T) {
	repo, api := setupRepo(t)
	ctx := context.Background()

	api.On("UpdateItem", ctx, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := repo.Create(ctx, &user.User{Name: "n", Email: "e"})

	assert.Equal(t, 500, pkgerrors.HTTPStatus(err))
	api.AssertNotCalled(t, "PutItem", mock.Anything, mock.Anything)
}

func TestUserRepoDDB_Create_PutError(t *testing.T) {
	repo, api := setupRepo(t)
	ctx := context.Background()

	api.On("UpdateItem", ctx, mock.Anything).Return(&awsdynamodb.UpdateItemOutput{
		Attributes: map[string]types.AttributeValue{"seq": numAttr("1")},
	}, nil)
	api.On("PutItem", ctx, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

	_, err := repo.Create(ctx, &user.User{Name: "n", Email: "e"})

	var ie *pkgerrors.InternalError
	assert.ErrorAs(t, err, &ie)
}

func TestUserRepoDDB_GetByID(t *testing.T) {
	repo, api := setupRepo(t)
	ctx := context.Background()

	api.On("GetItem", ctx, mock.MatchedBy(func(in *awsdynamodb.GetItemInput) bool {
		return keyIs(in.Key, "1") && aws.ToBool(in.ConsistentRead)
	})).Return(&awsdynamodb.GetItemOutput{
		Item: userAttrs("1", "John Doe", "john@example.com"),
	}, nil)

	got, err := repo.GetByID(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, &user.User{ID: 1, Name: "John Doe", Email: "john@example.com"}, got)
}

func TestUserRepoDDB_GetByID_NotFound(t *testing.T) {
	repo, api := setupRepo(t)
	ctx := context.Background()

	api.On("GetItem", ctx, mock.Anything).Return(&awsdynamodb.GetItemOutput{}, nil)

	_, err := repo.GetByID(ctx, 999)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepoDDB_GetByID_CounterKeyIsNotAUser(t *testing.T) {
	repo, api := setupRepo(t)

	_, err := repo.GetByID(context.Background(), 0)

	assert.True(t, pkgerrors.IsNotFound(err))
	api.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
}

func TestUserRepoDDB_List_SortsAcrossPages(t *testing.T) {
	repo, api := setupRepo(t)
	ctx := context.Background()

	api.On("Scan", ctx, mock.MatchedBy(func(in *awsdynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil && in.FilterExpression != nil
	})).Return(&awsdynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			userAttrs("3", "Admin User", "admin@example.com"),
			userAttrs("1", "John Doe", "john@example.com"),
		},
		LastEvaluatedKey: idKey(1),
	}, nil).Once()
	api.On("Scan", ctx, mock.MatchedBy(func(in *awsdynamodb.ScanInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&awsdynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			userAttrs("2", "Jane Smith", "jane@example.com"),
		},
	}, nil).Once()

	users, err := repo.List(ctx)

	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{users[0].ID, users[1].ID, users[2].ID})
	assert.Equal(t, "Jane Smith", users[1].Name)
	api.AssertExpectations(t)
}

func TestUserRepoDDB_List_Error(t *testing.T) {
	repo, api := setupRepo(t)
	ctx := context.Background()

	api.On("Scan", ctx, mock.Anything).Return(nil, errors.New("table not found"))

	users, err := repo.List(ctx)

	assert.Nil(t, users)
	assert.Error(t, err)
}
