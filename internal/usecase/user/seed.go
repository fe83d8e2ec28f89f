package user

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domain "harness-sample-app/internal/domain/user"
)

// SampleUsers are the records a fresh deployment starts with.
func SampleUsers() []domain.User {
	return []domain.User{
		{Name: "John Doe", Email: "john@example.com"},
		{Name: "Jane Smith", Email: "jane@example.com"},
	}
}

// Seed creates the sample users through repo when it holds no users yet,
// so they receive ids 1 and 2. It returns the number of users created.
func Seed(ctx context.Context, repo Repository, log *zap.Logger) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users before seeding: %w", err)
	}
	if len(existing) > 0 {
		log.Debug("store already populated, skipping seed", zap.Int("count", len(existing)))
		return 0, nil
	}

	samples := SampleUsers()
	for i := range samples {
		if _, err := repo.Create(ctx, &samples[i]); err != nil {
			return i, fmt.Errorf("failed to seed user %q: %w", samples[i].Email, err)
		}
	}

	log.Info("seeded sample users", zap.Int("count", len(samples)))
	return len(samples), nil
}
