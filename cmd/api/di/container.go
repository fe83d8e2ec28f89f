package di

import (
	"context"
	"fmt"
	"time"

	"harness-sample-app/cmd/api/infrastructure"
	"harness-sample-app/internal/adapter/cache"
	"harness-sample-app/internal/adapter/db/dynamodb"
	"harness-sample-app/internal/adapter/db/memory"
	"harness-sample-app/internal/adapter/db/sqldb"
	ginhandler "harness-sample-app/internal/adapter/gin/handler"
	"harness-sample-app/internal/adapter/gin/middleware"
	"harness-sample-app/internal/adapter/repository/breaker"
	"harness-sample-app/internal/adapter/repository/cached"
	"harness-sample-app/internal/config"
	"harness-sample-app/internal/usecase/user"
	"harness-sample-app/pkg/dynamo"
	"harness-sample-app/pkg/metrics"
	redisclient "harness-sample-app/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB       // nil unless a SQL store is selected
	Dynamo        *dynamo.Client // nil unless the dynamodb store is selected
	RedisClient   *redisclient.Client
	Metrics       *metrics.Collector // nil unless METRICS_ENABLED
	UserRepo      user.Repository
	UserUC        user.Usecase
	RateLimiter   *middleware.RateLimiter
	UserHandler   *ginhandler.UserHandler
	SystemHandler *ginhandler.SystemHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewCollector("harness")
	}

	repo, err := c.newStore(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	if cfg.Store.Durable() && cfg.Store.CircuitBreaker {
		repo = breaker.NewUserRepository(repo, breaker.DefaultConfig("user-store-"+cfg.Store.Driver), l)
	}

	if cfg.Redis.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb

		// The cache outlives a memory store and is shared across replicas,
		// so it would serve ids this process never assigned.
		if cfg.Store.Durable() {
			userCache := cache.NewRedisUserCache(
				rdb.Client,
				time.Duration(cfg.Redis.CacheTTL)*time.Second,
				l,
			)
			repo = cached.NewCachedUserRepository(repo, userCache, l).WithMetrics(c.Metrics)
		} else {
			l.Info("user cache disabled for the in-memory store")
		}

		if cfg.RateLimit.Enabled {
			c.RateLimiter = middleware.NewRateLimiter(
				rdb.Client,
				middleware.RateLimiterConfig{
					RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
					BurstCapacity:     cfg.RateLimit.BurstCapacity,
					Enabled:           cfg.RateLimit.Enabled,
				},
				l,
			)
		}
	}

	if cfg.Store.SeedSampleUsers {
		if _, err := user.Seed(ctx, repo, l); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to seed users: %w", err)
		}
	}

	c.UserRepo = repo
	c.UserUC = user.New(repo, l)
	c.UserHandler = ginhandler.NewUserHandler(c.UserUC, l).WithMetrics(c.Metrics)
	c.SystemHandler = ginhandler.NewSystemHandler(time.Now())

	return c, nil
}

// newStore builds the user store selected by STORE_DRIVER.
func (c *Container) newStore(ctx context.Context) (user.Repository, error) {
	cfg, l := c.Config, c.Logger

	switch cfg.Store.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		db, err := infrastructure.NewDatabase(cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db

		repo := sqldb.NewUserRepoSQL(db, l)
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repo, nil

	case config.DriverDynamoDB:
		client, err := infrastructure.NewDynamoDB(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize DynamoDB: %w", err)
		}
		c.Dynamo = client
		return dynamodb.NewUserRepoDDB(client.Client, cfg.DynamoDB.Table, l), nil

	default:
		l.Info("using in-memory user store")
		return memory.NewUserRepoMem(), nil
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
