package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harness-sample-app/internal/domain/user"
	pkgerrors "harness-sample-app/pkg/errors"
)

func TestUserRepoMem_CreateAssignsIncreasingIDs(t *testing.T) {
	repo := NewUserRepoMem()
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		created, err := repo.Create(ctx, &user.User{Name: fmt.Sprintf("User %d", i), Email: "u@example.com"})
		require.NoError(t, err)
		assert.Greater(t, created.ID, last)
		last = created.ID
	}
	assert.Equal(t, int64(5), last)
}

func TestUserRepoMem_SeedSetsNextID(t *testing.T) {
	repo := NewUserRepoMem(
		user.User{ID: 1, Name: "John Doe", Email: "john@example.com"},
		user.User{ID: 7, Name: "Jane Smith", Email: "jane@example.com"},
	)

	created, err := repo.Create(context.Background(), &user.User{Name: "New", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []int64{1, 7, 8}, []int64{users[0].ID, users[1].ID, users[2].ID})
}

func TestUserRepoMem_GetByID(t *testing.T) {
	repo := NewUserRepoMem()
	ctx := context.Background()

	created, err := repo.Create(ctx, &user.User{Name: "Test User", Email: "test@example.com"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepoMem_ReturnsCopies(t *testing.T) {
	repo := NewUserRepoMem(user.User{ID: 1, Name: "John Doe", Email: "john@example.com"})
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	got.Name = "changed"

	users, err := repo.List(ctx)
	require.NoError(t, err)
	users[0].Email = "changed"

	again, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", again.Name)
	assert.Equal(t, "john@example.com", again.Email)
}

func TestUserRepoMem_CreateNil(t *testing.T) {
	repo := NewUserRepoMem()
	_, err := repo.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestUserRepoMem_ConcurrentCreates(t *testing.T) {
	repo := NewUserRepoMem()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	ids := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := repo.Create(ctx, &user.User{Name: fmt.Sprintf("User %d", i), Email: "u@example.com"})
			assert.NoError(t, err)
			ids <- created.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, workers)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, workers)
}
