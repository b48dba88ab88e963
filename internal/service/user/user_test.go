package user

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/studyon/billing/internal/apperrors"
	"github.com/studyon/billing/internal/models"
	"github.com/studyon/billing/internal/repository"
	"github.com/studyon/billing/internal/repository/postgres"
	"github.com/studyon/billing/internal/service/payment"
	"github.com/studyon/billing/internal/testutil"
)

func Test_UserService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withService := func(t *testing.T, initialBalance decimal.Decimal, fn func(s *UserService, storage repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			payments := payment.NewService(storage)
			fn(NewService(nil, storage, payments, initialBalance), storage)
		})
	}

	t.Run("create user with welcome deposit", func(t *testing.T) {
		withService(t, decimal.NewFromInt(1000), func(s *UserService, storage repository.Storage) {
			created, err := s.CreateUser(t.Context(), "student", "password123")

			require.NoError(t, err)
			require.Equal(t, "student", created.Username)
			require.NotEqual(t, "password123", created.HashedPassword, "password must be stored hashed")

			account, err := s.GetAccount(t.Context(), created.ID)
			require.NoError(t, err)
			require.True(t, account.Balance.Equal(decimal.NewFromInt(1000)), "welcome deposit should be credited")

			trs, err := storage.Ledger().ListTransactions(t.Context(), account.ID, repository.TransactionFilter{})
			require.NoError(t, err)
			require.Len(t, trs, 1, "welcome deposit should show up in the ledger")
			require.Equal(t, models.TransactionKindDeposit, trs[0].Kind)
			require.True(t, trs[0].Amount.Equal(decimal.NewFromInt(1000)))
		})
	})

	t.Run("create user without welcome deposit", func(t *testing.T) {
		withService(t, decimal.Zero, func(s *UserService, storage repository.Storage) {
			created, err := s.CreateUser(t.Context(), "student", "password123")

			require.NoError(t, err)

			account, err := s.GetAccount(t.Context(), created.ID)
			require.NoError(t, err)
			require.True(t, account.Balance.IsZero())

			trs, err := storage.Ledger().ListTransactions(t.Context(), account.ID, repository.TransactionFilter{})
			require.NoError(t, err)
			require.Empty(t, trs, "no ledger rows for zero welcome balance")
		})
	})

	t.Run("duplicate username creates nothing", func(t *testing.T) {
		withService(t, decimal.NewFromInt(1000), func(s *UserService, storage repository.Storage) {
			first, err := s.CreateUser(t.Context(), "student", "password123")
			require.NoError(t, err)

			_, err = s.CreateUser(t.Context(), "student", "otherpassword")

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)

			account, err := s.GetAccount(t.Context(), first.ID)
			require.NoError(t, err)
			require.True(t, account.Balance.Equal(decimal.NewFromInt(1000)), "first user account stays intact")
		})
	})

	t.Run("get user", func(t *testing.T) {
		withService(t, decimal.Zero, func(s *UserService, storage repository.Storage) {
			created, err := s.CreateUser(t.Context(), "student", "password123")
			require.NoError(t, err)

			byID, err := s.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, created.ID, byID.ID)

			byName, err := s.GetUserByUsername(t.Context(), "student")
			require.NoError(t, err)
			require.Equal(t, created.ID, byName.ID)
		})
	})
}
