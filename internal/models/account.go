package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds the spendable balance of a single user.
// Balance is mutated only by the payment service inside a store transaction.
type Account struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Balance decimal.Decimal
}
