package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/studyon/billing/internal/handlers/render"
	"github.com/studyon/billing/internal/handlers/userctx"
	"github.com/studyon/billing/internal/logger"
	"github.com/studyon/billing/internal/models"
	"github.com/studyon/billing/internal/repository"
)

type transactionResponse struct {
	ID         string     `json:"id"`
	Kind       string     `json:"type"`
	Amount     float64    `json:"amount"`
	CourseCode *string    `json:"course_code,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func newTransactionResponse(t models.Transaction) transactionResponse {
	amount, _ := t.Amount.Float64()
	return transactionResponse{
		ID:         t.ID.String(),
		Kind:       string(t.Kind),
		Amount:     amount,
		CourseCode: t.CourseCode,
		CreatedAt:  t.CreatedAt,
		ExpiresAt:  t.ExpiresAt,
	}
}

// Builds repository.TransactionFilter from query params.
// Known params: 'type', 'course_code', 'skip_expired'
func transactionFilter(r *http.Request) (repository.TransactionFilter, bool) {
	filter := repository.TransactionFilter{}

	if raw := r.URL.Query().Get("type"); raw != "" {
		kind := models.TransactionKind(raw)
		if !kind.Valid() {
			return filter, false
		}
		filter.Kind = &kind
	}

	if code := r.URL.Query().Get("course_code"); code != "" {
		filter.CourseCode = &code
	}

	if raw := r.URL.Query().Get("skip_expired"); raw != "" {
		skip, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, false
		}
		filter.SkipExpired = skip
	}

	return filter, true
}

func handleListTransactions(historyService historyService, userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		filter, ok := transactionFilter(r)
		if !ok {
			render.ServiceError(w, "Invalid filter params", http.StatusBadRequest)
			return
		}

		account, err := userService.GetAccount(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to get user account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		transactions, err := historyService.FilteredTransactions(r.Context(), account.ID, filter)
		if err != nil {
			l.Error("Failed to list transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]transactionResponse, 0, len(transactions))
		for _, t := range transactions {
			res = append(res, newTransactionResponse(t))
		}
		render.JSON(w, res)
	})
}

func handleExpiringRentals(historyService historyService, userService userService, l logger.Logger) http.Handler {
	type rental struct {
		CourseTitle string    `json:"course_title"`
		ExpiresAt   time.Time `json:"expires_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		window := 24 * time.Hour
		if raw := r.URL.Query().Get("within"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil || parsed <= 0 {
				render.ServiceError(w, "Invalid 'within' duration", http.StatusBadRequest)
				return
			}
			window = parsed
		}

		account, err := userService.GetAccount(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to get user account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		rentals, err := historyService.ExpiringWithinWindow(r.Context(), account.ID, window)
		if err != nil {
			l.Error("Failed to list expiring rentals", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]rental, 0, len(rentals))
		for _, er := range rentals {
			res = append(res, rental{CourseTitle: er.CourseTitle, ExpiresAt: er.ExpiresAt})
		}
		render.JSON(w, res)
	})
}
