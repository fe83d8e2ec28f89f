package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	domain "harness-sample-app/internal/domain/user"
	"harness-sample-app/internal/usecase/user"
	pkgerrors "harness-sample-app/pkg/errors"
)

// Config holds circuit breaker settings for a remote store.
type Config struct {
	Name             string
	MaxRequests      uint32        // requests allowed while half-open
	Interval         time.Duration // closed-state window after which counts reset
	Timeout          time.Duration // open-state duration before probing again
	FailureThreshold float64       // failure ratio that trips the breaker
	MinRequests      uint32        // requests needed before the ratio is evaluated
}

// DefaultConfig returns the settings used for the SQL and DynamoDB stores.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// UserRepository guards a user.Repository with a circuit breaker. Lookups
// of unknown ids count as successes; only store failures trip it.
type UserRepository struct {
	next user.Repository
	cb   *gobreaker.CircuitBreaker
	log  *zap.Logger
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository wraps next with a breaker configured by cfg.
func NewUserRepository(next user.Repository, cfg Config, log *zap.Logger) *UserRepository {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || pkgerrors.IsNotFound(err) || pkgerrors.IsValidation(err)
		},
	})

	return &UserRepository{next: next, cb: cb, log: log}
}

// State reports the breaker's current state.
func (r *UserRepository) State() gobreaker.State {
	return r.cb.State()
}

func (r *UserRepository) execute(op string, fn func() (any, error)) (any, error) {
	result, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		r.log.Warn("user store call rejected by circuit breaker", zap.String("op", op), zap.Error(err))
		return nil, pkgerrors.NewInternalError("user store unavailable", err)
	}
	return result, err
}

// Create forwards to the wrapped store.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	result, err := r.execute("create", func() (any, error) {
		return r.next.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.User), nil
}

// GetByID forwards to the wrapped store.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	result, err := r.execute("get", func() (any, error) {
		return r.next.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.User), nil
}

// List forwards to the wrapped store.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	result, err := r.execute("list", func() (any, error) {
		return r.next.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.User), nil
}
