package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyon/billing/internal/models"
	"github.com/studyon/billing/internal/repository"
	"github.com/studyon/billing/internal/service/auth"
	"github.com/studyon/billing/internal/service/payment"
)

type UserService struct {
	hasher   auth.PasswordHasher
	storage  repository.Storage
	payments *payment.Service

	// Welcome balance credited through the payment engine right after
	// registration. Zero disables the welcome deposit.
	initialBalance decimal.Decimal
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage, payments *payment.Service, initialBalance decimal.Decimal) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:         hasher,
		storage:        storage,
		payments:       payments,
		initialBalance: initialBalance,
	}
}

// CreateUser registers the user together with their account. The welcome
// deposit goes through the payment engine afterwards as its own atomic
// unit, so it shows up in the ledger like any other deposit.
func (s *UserService) CreateUser(ctx context.Context, username string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	var account models.Account
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		user, err = storage.User().CreateUser(ctx, username, hash)
		if err != nil {
			return err
		}

		account, err = storage.Account().CreateAccount(ctx, user.ID)
		return err
	})
	if err != nil {
		return user, err
	}

	if s.initialBalance.IsPositive() {
		if _, err := s.payments.Deposit(ctx, account.ID, s.initialBalance); err != nil {
			return user, fmt.Errorf("welcome deposit failed: %w", err)
		}
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.storage.User().GetUserByUsername(ctx, username)
}

// GetAccount returns the user's billing account with its current balance
func (s *UserService) GetAccount(ctx context.Context, userID uuid.UUID) (models.Account, error) {
	return s.storage.Account().GetAccountByUserID(ctx, userID)
}
