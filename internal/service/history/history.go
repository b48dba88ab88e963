package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/studyon/billing/internal/models"
	"github.com/studyon/billing/internal/repository"
)

// Service is the read side of the ledger: filtering and aggregation over
// transaction rows. It never mutates anything.
type Service struct {
	storage repository.Storage
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(storage repository.Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FilteredTransactions returns the account's ledger rows newest first,
// optionally narrowed by kind, course code or liveness of rent expiry.
func (s *Service) FilteredTransactions(ctx context.Context, accountID uuid.UUID, filter repository.TransactionFilter) ([]models.Transaction, error) {
	return s.storage.Ledger().ListTransactions(ctx, accountID, filter)
}

// ExpiringWithinWindow returns the account's rent payments expiring in
// [now, now+window), joined with course titles.
func (s *Service) ExpiringWithinWindow(ctx context.Context, accountID uuid.UUID, window time.Duration) ([]models.ExpiringRental, error) {
	return s.storage.Ledger().ListExpiringRentals(ctx, accountID, s.now(), window)
}

// MonthlyReport aggregates payments against non-free courses with
// created_at in [start, end) across all accounts, grouped by course.
func (s *Service) MonthlyReport(ctx context.Context, start time.Time, end time.Time) ([]models.CourseSales, error) {
	return s.storage.Ledger().SalesReport(ctx, start, end)
}
