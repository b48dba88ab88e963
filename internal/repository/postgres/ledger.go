package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/studyon/billing/internal/apperrors"
	"github.com/studyon/billing/internal/models"
	"github.com/studyon/billing/internal/repository"
)

type LedgerRepo struct {
	DB DBTX
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, account_id, kind, amount, created_at, course_code, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, account_id, kind, amount, created_at, course_code, expires_at
`

func (r *LedgerRepo) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createTransaction, t.ID, t.AccountID, t.Kind, t.Amount, t.CreatedAt, t.CourseCode, t.ExpiresAt)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return created, apperrors.ErrAccountNotFound
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

func (r *LedgerRepo) ListTransactions(ctx context.Context, accountID uuid.UUID, filter repository.TransactionFilter) ([]models.Transaction, error) {
	query := `
	SELECT t.id, t.account_id, t.kind, t.amount, t.created_at, t.course_code, t.expires_at
	FROM transactions t
	WHERE t.account_id = $1`
	args := []any{accountID}

	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		query += fmt.Sprintf(" AND t.kind = $%d", len(args))
	}
	if filter.CourseCode != nil {
		args = append(args, *filter.CourseCode)
		query += fmt.Sprintf(" AND t.course_code = $%d", len(args))
	}
	if filter.SkipExpired {
		query += " AND (t.expires_at IS NULL OR t.expires_at > now())"
	}
	query += " ORDER BY t.created_at DESC"

	rows, _ := r.DB.Query(ctx, query, args...)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return transactions, nil
}

const listExpiringRentals = `-- name: ListExpiringRentals
SELECT c.title, t.expires_at
FROM transactions t
JOIN courses c ON c.code = t.course_code
WHERE t.account_id = $1
  AND c.kind = 'rent'
  AND t.expires_at >= $2
  AND t.expires_at < $3
ORDER BY t.expires_at
`

func (r *LedgerRepo) ListExpiringRentals(ctx context.Context, accountID uuid.UUID, now time.Time, window time.Duration) ([]models.ExpiringRental, error) {
	rows, _ := r.DB.Query(ctx, listExpiringRentals, accountID, now, now.Add(window))
	rentals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExpiringRental, error) {
		var e models.ExpiringRental
		err := row.Scan(&e.CourseTitle, &e.ExpiresAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rentals, nil
}

const salesReport = `-- name: SalesReport
SELECT c.title, c.kind, count(t.id), sum(t.amount)
FROM transactions t
JOIN courses c ON c.code = t.course_code
WHERE t.kind = 'payment'
  AND c.kind <> 'free'
  AND t.created_at >= $1
  AND t.created_at < $2
GROUP BY c.title, c.kind
ORDER BY c.title
`

func (r *LedgerRepo) SalesReport(ctx context.Context, start time.Time, end time.Time) ([]models.CourseSales, error) {
	rows, _ := r.DB.Query(ctx, salesReport, start, end)
	report, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CourseSales, error) {
		var s models.CourseSales
		err := row.Scan(&s.CourseTitle, &s.CourseKind, &s.Count, &s.Total)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return report, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.AccountID, &t.Kind, &t.Amount, &t.CreatedAt, &t.CourseCode, &t.ExpiresAt)
	return t, err
}
