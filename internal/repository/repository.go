package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyon/billing/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository
	Save(ctx context.Context, token models.RefreshToken) (tokenID uuid.UUID, err error)

	// Return the token and mark it used in one go
	// If the token is already used, must not overwrite the existing 'usedAt'
	// and has to return apperrors.ErrRefreshTokenIsUsed
	GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)
}

// Account repository interface
type AccountRepo interface {
	// Create account with zero balance
	// If the user already has an account return apperrors.ErrAccountAlreadyExists
	CreateAccount(ctx context.Context, userID uuid.UUID) (models.Account, error)

	// Get account by its id or by owning user
	// If account not found must return apperrors.ErrAccountNotFound
	GetAccount(ctx context.Context, accountID uuid.UUID) (models.Account, error)
	GetAccountByUserID(ctx context.Context, userID uuid.UUID) (models.Account, error)

	// Get account by id and lock its row until the surrounding
	// transaction ends. Must be called inside InTx only: the lock is what
	// serializes concurrent balance changes for one account.
	GetAccountForUpdate(ctx context.Context, accountID uuid.UUID) (models.Account, error)

	// Apply delta (positive or negative) to the account balance
	// Debiting below zero must return apperrors.ErrInsufficientFunds
	UpdateBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (models.Account, error)
}

// Course catalog interface, read only for the billing core
type CourseRepo interface {
	// If course not found must return apperrors.ErrCourseNotFound
	GetCourseByCode(ctx context.Context, code string) (models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// Filter for ListTransactions. Zero value means no filtering.
type TransactionFilter struct {
	Kind       *models.TransactionKind
	CourseCode *string

	// Drop payment rows whose expiry is already in the past.
	// Rows without expiry are always kept.
	SkipExpired bool
}

// Ledger repository interface: append-only transaction rows
type LedgerRepo interface {
	// Insert a ledger row. The row is immutable afterwards.
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)

	// All transactions of the account ordered by created_at descending
	ListTransactions(ctx context.Context, accountID uuid.UUID, filter TransactionFilter) ([]models.Transaction, error)

	// Rent payments of the account expiring within [now, now+window)
	ListExpiringRentals(ctx context.Context, accountID uuid.UUID, now time.Time, window time.Duration) ([]models.ExpiringRental, error)

	// Payments against non-free courses with created_at in [start, end),
	// across all accounts, grouped by course
	SalesReport(ctx context.Context, start time.Time, end time.Time) ([]models.CourseSales, error)
}

type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Account() AccountRepo
	Course() CourseRepo
	Ledger() LedgerRepo

	// Run fn inside a database transaction. Commit if fn returns nil,
	// rollback otherwise. The Storage passed to fn is bound to the
	// transaction.
	InTx(ctx context.Context, fn func(Storage) error) error
}
