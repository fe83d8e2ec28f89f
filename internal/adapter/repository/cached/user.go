package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"harness-sample-app/internal/adapter/cache"
	domain "harness-sample-app/internal/domain/user"
	"harness-sample-app/internal/usecase/user"
	"harness-sample-app/pkg/metrics"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository and a cache implementation.
type CachedUserRepository struct {
	dbRepo  user.Repository
	cache   cache.UserCache
	log     *zap.Logger
	group   singleflight.Group
	metrics *metrics.Collector
}

var _ user.Repository = (*CachedUserRepository)(nil)

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// WithMetrics makes the repository count cache hits and misses in m.
func (r *CachedUserRepository) WithMetrics(m *metrics.Collector) *CachedUserRepository {
	r.metrics = m
	return r
}

// Create stores the user and primes the cache with the result.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.dbRepo.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, created); err != nil {
		r.log.Warn("failed to cache created user", zap.Int64("id", created.ID), zap.Error(err))
	}
	return created, nil
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
// Misses are not cached, so a later create is visible immediately.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to store", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		r.metrics.CacheHit()
		return cachedUser, nil
	}
	r.metrics.CacheMiss()

	// Collapse concurrent misses for the same id into one store read. The
	// shared read must not fail every waiter when the first caller cancels.
	result, err, _ := r.group.Do(fmt.Sprintf("user:%d", id), func() (any, error) {
		readCtx := context.WithoutCancel(ctx)
		u, err := r.dbRepo.GetByID(readCtx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(readCtx, u); err != nil {
			r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := *result.(*domain.User)
	return &u, nil
}

// List delegates to the underlying repository.
func (r *CachedUserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}
