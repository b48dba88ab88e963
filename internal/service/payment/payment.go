package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyon/billing/internal/apperrors"
	"github.com/studyon/billing/internal/models"
	"github.com/studyon/billing/internal/repository"
)

// RentPeriod is how long access to a rent course lasts after payment.
const RentPeriod = 7 * 24 * time.Hour

type Option func(*Service)

// WithClock replaces the time source, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the ledger engine: the only writer of account balances.
// Every balance change it makes is paired with exactly one ledger row,
// both inside one database transaction.
type Service struct {
	storage repository.Storage
	now     func() time.Time
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

// Deposit credits the account and records a deposit row atomically.
// The caller is expected to validate the amount, the engine only rejects
// non-positive values.
func (s *Service) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (models.Transaction, error) {
	var created models.Transaction

	if amount.Sign() <= 0 {
		return created, apperrors.ErrAmountNotPositive
	}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		account, err := storage.Account().GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		if _, err := storage.Account().UpdateBalance(ctx, account.ID, amount); err != nil {
			return err
		}

		created, err = storage.Ledger().CreateTransaction(ctx, models.Transaction{
			AccountID: account.ID,
			Kind:      models.TransactionKindDeposit,
			Amount:    amount,
			CreatedAt: s.now(),
		})
		return err
	})
	if err != nil {
		return created, fmt.Errorf("deposit failed: %w", err)
	}

	return created, nil
}

// Pay debits the course price from the account and records a payment row
// atomically. Payments against rent courses get an expiry of RentPeriod
// after creation. Free courses produce a zero value payment row for the
// audit trail.
//
// Returns apperrors.ErrInsufficientFunds when the balance does not cover
// the price; nothing is written in that case.
func (s *Service) Pay(ctx context.Context, accountID uuid.UUID, courseCode string) (models.Transaction, error) {
	var created models.Transaction

	course, err := s.storage.Course().GetCourseByCode(ctx, courseCode)
	if err != nil {
		return created, err
	}

	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		// The row lock serializes concurrent payments for one account:
		// the second caller blocks here and re-reads the committed balance.
		account, err := storage.Account().GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		if account.Balance.LessThan(course.Price) {
			return apperrors.ErrInsufficientFunds
		}

		if _, err := storage.Account().UpdateBalance(ctx, account.ID, course.Price.Neg()); err != nil {
			return err
		}

		createdAt := s.now()
		transaction := models.Transaction{
			AccountID:  account.ID,
			Kind:       models.TransactionKindPayment,
			Amount:     course.Price,
			CreatedAt:  createdAt,
			CourseCode: &course.Code,
		}
		if course.Kind == models.CourseKindRent {
			expiresAt := createdAt.Add(RentPeriod)
			transaction.ExpiresAt = &expiresAt
		}

		created, err = storage.Ledger().CreateTransaction(ctx, transaction)
		return err
	})
	if err != nil {
		return created, err
	}

	return created, nil
}
