package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/studyon/billing/internal/apperrors"
	"github.com/studyon/billing/internal/models"
)

type AccountRepo struct {
	DB DBTX
}

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, user_id, balance)
VALUES ($1, $2, 0)
RETURNING id, user_id, balance
`

func (r *AccountRepo) CreateAccount(ctx context.Context, userID uuid.UUID) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, createAccount, uuid.New(), userID)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, apperrors.ErrAccountAlreadyExists
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const getAccount = `-- name: GetAccount
SELECT id, user_id, balance FROM accounts
WHERE id = $1
`

func (r *AccountRepo) GetAccount(ctx context.Context, accountID uuid.UUID) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccount, accountID)
	return collectAccount(rows)
}

const getAccountByUserID = `-- name: GetAccountByUserID
SELECT id, user_id, balance FROM accounts
WHERE user_id = $1
`

func (r *AccountRepo) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByUserID, userID)
	return collectAccount(rows)
}

const getAccountForUpdate = `-- name: GetAccountForUpdate
SELECT id, user_id, balance FROM accounts
WHERE id = $1
FOR UPDATE
`

// Lock the account row until the surrounding transaction ends.
// Concurrent balance changes for the same account queue up here, so the
// balance read below always reflects all previously committed writes.
func (r *AccountRepo) GetAccountForUpdate(ctx context.Context, accountID uuid.UUID) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountForUpdate, accountID)
	return collectAccount(rows)
}

const updateBalance = `-- name: UpdateBalance
UPDATE accounts
SET balance = balance + $2
WHERE id = $1
RETURNING id, user_id, balance
`

// Apply delta to the account balance. The balance >= 0 check constraint
// backs the service level precondition: even a racing debit cannot push
// the balance below zero.
func (r *AccountRepo) UpdateBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, updateBalance, accountID, delta)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return account, apperrors.ErrInsufficientFunds
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return account, apperrors.ErrAccountNotFound
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func collectAccount(rows pgx.Rows) (models.Account, error) {
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Balance)
	return a, err
}
