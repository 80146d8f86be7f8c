// README: Quota service meters model requests per caller with a lazily reset monthly allowance.
package quota

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Service orchestrates request-quota logic.
type Service struct {
	store     *Store
	allowance int
}

// NewService creates a Service backed by the given Store. allowance <= 0 selects DefaultTokens.
func NewService(store *Store, allowance int) *Service {
	if allowance <= 0 {
		allowance = DefaultTokens
	}
	return &Service{store: store, allowance: allowance}
}

// Allowance is the monthly request budget per caller.
func (s *Service) Allowance() int { return s.allowance }

// UseToken deducts one token from the caller's monthly allowance.
// If the user row does not exist yet it is initialised and the token is immediately consumed.
// Returns ErrInsufficientTokens when the quota for the current month is exhausted.
func (s *Service) UseToken(ctx context.Context, uid string) error {
	err := s.store.UseToken(ctx, uid, s.allowance)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureUser(ctx, uid, s.allowance); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid, s.allowance)
}

// Remaining reports how many requests uid has left this month.
func (s *Service) Remaining(ctx context.Context, uid string) (int, error) {
	n, err := s.store.Remaining(ctx, uid, s.allowance)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.allowance, nil
	}
	return n, err
}
