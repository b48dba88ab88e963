package handlers

import (
	"errors"
	"net/http"

	"github.com/studyon/billing/internal/apperrors"
	"github.com/studyon/billing/internal/handlers/render"
	"github.com/studyon/billing/internal/handlers/userctx"
	"github.com/studyon/billing/internal/logger"
	"github.com/studyon/billing/internal/models"
)

type courseResponse struct {
	Code  string  `json:"code"`
	Title string  `json:"title"`
	Kind  string  `json:"kind"`
	Price float64 `json:"price"`
}

func newCourseResponse(c models.Course) courseResponse {
	price, _ := c.Price.Float64()
	return courseResponse{
		Code:  c.Code,
		Title: c.Title,
		Kind:  string(c.Kind),
		Price: price,
	}
}

func handleListCourses(catalog courseCatalog, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		courses, err := catalog.ListCourses(r.Context())
		if err != nil {
			l.Error("Failed to list courses", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]courseResponse, 0, len(courses))
		for _, c := range courses {
			res = append(res, newCourseResponse(c))
		}
		render.JSON(w, res)
	})
}

func handleGetCourse(catalog courseCatalog, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		course, err := catalog.GetCourseByCode(r.Context(), r.PathValue("code"))

		switch {
		case err == nil:
			render.JSON(w, newCourseResponse(course))
		case errors.Is(err, apperrors.ErrCourseNotFound):
			render.ServiceError(w, "Course not found", http.StatusNotFound)
		default:
			l.Error("Failed to get course", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handlePay(paymentService paymentService, userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		account, err := userService.GetAccount(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to get user account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		tr, err := paymentService.Pay(r.Context(), account.ID, r.PathValue("code"))

		switch {
		case err == nil:
			render.JSONWithStatus(w, newTransactionResponse(tr), http.StatusCreated)
		case errors.Is(err, apperrors.ErrCourseNotFound):
			render.ServiceError(w, "Course not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			render.ServiceError(w, "Insufficient funds", http.StatusPaymentRequired)
		default:
			l.Error("Failed to pay for course", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
