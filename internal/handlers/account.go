package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyon/billing/internal/apperrors"
	"github.com/studyon/billing/internal/handlers/render"
	"github.com/studyon/billing/internal/handlers/userctx"
	"github.com/studyon/billing/internal/logger"
)

func handleDeposit(paymentService paymentService, userService userService, l logger.Logger) http.Handler {
	type request struct {
		Amount decimal.Decimal `json:"amount"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		account, err := userService.GetAccount(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to get user account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		tr, err := paymentService.Deposit(r.Context(), account.ID, data.Amount)

		switch {
		case err == nil:
			render.JSONWithStatus(w, newTransactionResponse(tr), http.StatusCreated)
		case errors.Is(err, apperrors.ErrAmountNotPositive):
			render.ServiceError(w, "Amount must be positive", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to deposit", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleMe(userService userService) http.Handler {
	type response struct {
		ID       uuid.UUID `json:"id"`
		Username string    `json:"username"`
		Balance  float64   `json:"balance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		account, err := userService.GetAccount(r.Context(), user.ID)
		if err != nil {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		balance, _ := account.Balance.Float64()
		render.JSON(w, response{ID: user.ID, Username: user.Username, Balance: balance})
	})
}
