package memory

import (
	"context"
	"errors"
	"sync"

	"harness-sample-app/internal/domain/user"
	pkgerrors "harness-sample-app/pkg/errors"
)

// UserRepoMem is an in-process user store. Each instance owns its own
// collection, so tests and servers never share state.
type UserRepoMem struct {
	mu     sync.RWMutex
	users  []user.User // insertion order
	nextID int64
}

// NewUserRepoMem creates a store preloaded with seed users. Seed ids are
// kept as given and the next assigned id is one past the largest of them.
func NewUserRepoMem(seed ...user.User) *UserRepoMem {
	r := &UserRepoMem{
		users:  make([]user.User, 0, len(seed)),
		nextID: 1,
	}
	for _, u := range seed {
		r.users = append(r.users, u)
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

// Create assigns the next id to u and appends it to the collection.
// The caller's struct is updated with the assigned id.
func (r *UserRepoMem) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u.ID = r.nextID
	r.nextID++
	r.users = append(r.users, *u)

	created := *u
	return &created, nil
}

// GetByID returns a copy of the user with the given id.
func (r *UserRepoMem) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, pkgerrors.ErrUserNotFound
}

// List returns a snapshot of all users in insertion order.
func (r *UserRepoMem) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]user.User, len(r.users))
	copy(users, r.users)
	return users, nil
}
