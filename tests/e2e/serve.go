package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stretchr/testify/require"

	"github.com/studyon/billing/internal/handlers"
	"github.com/studyon/billing/internal/logger"
	"github.com/studyon/billing/internal/repository"
	"github.com/studyon/billing/internal/repository/postgres"
	"github.com/studyon/billing/internal/service/auth"
	"github.com/studyon/billing/internal/service/auth/tokenmanager"
	"github.com/studyon/billing/internal/service/history"
	"github.com/studyon/billing/internal/service/payment"
	"github.com/studyon/billing/internal/service/user"
	"github.com/studyon/billing/internal/testutil"
)

type Services struct {
	AuthService    *auth.AuthService
	PaymentService *payment.Service
	HistoryService *history.Service
	UserService    *user.UserService
	Storage        repository.Storage
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.InTx with it
func ServeInTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.InTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"}, storage.Refresh())
		require.NoError(t, err, "token manager should be created without errors")

		paymentService := payment.NewService(storage)
		historyService := history.NewService(storage)
		userService := user.NewService(auth.DefaultHasher, storage, paymentService, decimal.Zero)

		as, err := auth.NewService(auth.Config{}, tokenManager, userService)
		require.NoError(t, err, "auth service starting error", err)

		router := handlers.NewRouter(
			as,
			paymentService,
			historyService,
			userService,
			storage.Course(),
			logger.NewNoOpLogger(),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService:    as,
			PaymentService: paymentService,
			HistoryService: historyService,
			UserService:    userService,
			Storage:        storage,
		})
	})
}
