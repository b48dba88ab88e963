package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindPayment TransactionKind = "payment"
	TransactionKindDeposit TransactionKind = "deposit"
)

func (k TransactionKind) Valid() bool {
	return k == TransactionKindPayment || k == TransactionKindDeposit
}

// Transaction is a single ledger row. Rows are append only: once created
// they are never updated or deleted.
//
// Amount is always a positive magnitude, the direction of the balance
// change is implied by Kind. CourseCode is set for payments tied to a
// course and nil for plain deposits. ExpiresAt is set only for payments
// against a rent course.
type Transaction struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Kind       TransactionKind
	Amount     decimal.Decimal
	CreatedAt  time.Time
	CourseCode *string
	ExpiresAt  *time.Time
}

// ExpiringRental is a rent payment close to its expiry, joined with the
// course title for notification purposes.
type ExpiringRental struct {
	CourseTitle string
	ExpiresAt   time.Time
}

// CourseSales is one row of the monthly payment report.
type CourseSales struct {
	CourseTitle string
	CourseKind  CourseKind
	Count       int64
	Total       decimal.Decimal
}
