package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyon/billing/internal/handlers/middleware"
	"github.com/studyon/billing/internal/logger"
	"github.com/studyon/billing/internal/models"
	"github.com/studyon/billing/internal/repository"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	paymentService paymentService,
	historyService historyService,
	userService userService,
	catalog courseCatalog,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	apiv1 := http.NewServeMux()

	apiv1.Handle("POST /auth/register", handleRegister(authService, logger))
	apiv1.Handle("POST /auth/login", handleLogin(authService, logger))
	apiv1.Handle("POST /auth/refresh", handleTokenRefresh(authService, logger))

	apiv1.Handle("GET /courses", handleListCourses(catalog, logger))
	apiv1.Handle("GET /courses/{code}", handleGetCourse(catalog, logger))
	apiv1.Handle("POST /courses/{code}/pay", withAuth(handlePay(paymentService, userService, logger)))

	apiv1.Handle("POST /deposit", withAuth(handleDeposit(paymentService, userService, logger)))

	apiv1.Handle("GET /transactions", withAuth(handleListTransactions(historyService, userService, logger)))
	apiv1.Handle("GET /transactions/expiring", withAuth(handleExpiringRentals(historyService, userService, logger)))

	apiv1.Handle("GET /me", withAuth(handleMe(userService)))

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", apiv1))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Login user with username and password
	// Has to return apperrors.ErrUserNotFound if user not found
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// Set auth tokens (access, refresh) to response
	SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair)

	// Get refresh token from request
	GetRefreshString(r *http.Request) (string, error)

	// Get request and return user if it authenticated or error
	GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error)
}

type paymentService interface {
	Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (models.Transaction, error)
	Pay(ctx context.Context, accountID uuid.UUID, courseCode string) (models.Transaction, error)
}

type historyService interface {
	FilteredTransactions(ctx context.Context, accountID uuid.UUID, filter repository.TransactionFilter) ([]models.Transaction, error)
	ExpiringWithinWindow(ctx context.Context, accountID uuid.UUID, window time.Duration) ([]models.ExpiringRental, error)
}

type userService interface {
	GetAccount(ctx context.Context, userID uuid.UUID) (models.Account, error)
}

// Satisfied by repository.CourseRepo as is
type courseCatalog interface {
	GetCourseByCode(ctx context.Context, code string) (models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}
