package billing

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/studyon/billing/internal/testutil"
	"github.com/studyon/billing/tests/e2e"
)

func Test_Pay(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	e2e.ServeInTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s e2e.Services) {
		t.Run("pay rent course", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				account, pair := newUser(t, s, "nk")
				_, err := s.PaymentService.Deposit(t.Context(), account.ID, decimal.NewFromInt(1000))
				require.NoError(t, err)

				resp, body := doAuthed(t, s, pair, http.MethodPost, srvURL+"/api/v1/courses/python-dev/pay", "")
				require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

				var tr struct {
					Kind       string     `json:"type"`
					Amount     float64    `json:"amount"`
					CourseCode *string    `json:"course_code"`
					ExpiresAt  *time.Time `json:"expires_at"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &tr))
				require.Equal(t, "payment", tr.Kind)
				require.InDelta(t, 1000, tr.Amount, 0.001)
				require.NotNil(t, tr.CourseCode)
				require.Equal(t, "python-dev", *tr.CourseCode)
				require.NotNil(t, tr.ExpiresAt, "rent payment should carry expiry")
				require.WithinDuration(t, time.Now().Add(7*24*time.Hour), *tr.ExpiresAt, time.Minute)

				// Whole balance spent
				got, err := s.UserService.GetAccount(t.Context(), account.UserID)
				require.NoError(t, err)
				require.True(t, got.Balance.IsZero(), "balance should be zero, got %s", got.Balance)
			})
		})

		t.Run("pay buy course has no expiry", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				account, pair := newUser(t, s, "nk")
				_, err := s.PaymentService.Deposit(t.Context(), account.ID, decimal.NewFromInt(3000))
				require.NoError(t, err)

				resp, body := doAuthed(t, s, pair, http.MethodPost, srvURL+"/api/v1/courses/java-dev/pay", "")
				require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

				var tr struct {
					ExpiresAt *time.Time `json:"expires_at"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &tr))
				require.Nil(t, tr.ExpiresAt, "bought course should not expire")
			})
		})

		t.Run("free course costs nothing", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, pair := newUser(t, s, "nk")

				resp, body := doAuthed(t, s, pair, http.MethodPost, srvURL+"/api/v1/courses/frontend-dev/pay", "")
				require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

				var tr struct {
					Kind   string  `json:"type"`
					Amount float64 `json:"amount"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &tr))
				require.Equal(t, "payment", tr.Kind)
				require.Zero(t, tr.Amount, "free course payment should be zero")
			})
		})

		t.Run("insufficient funds", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				account, pair := newUser(t, s, "nk")
				_, err := s.PaymentService.Deposit(t.Context(), account.ID, decimal.NewFromInt(500))
				require.NoError(t, err)

				resp, body := doAuthed(t, s, pair, http.MethodPost, srvURL+"/api/v1/courses/php-dev/pay", "")

				require.Equalf(t, http.StatusPaymentRequired, resp.StatusCode, "not expected code. Body: %s", body)
				require.JSONEq(t, `
					{
						"error": "service_error",
						"message": "Insufficient funds"
					}`, body)

				// Balance should stay untouched
				got, err := s.UserService.GetAccount(t.Context(), account.UserID)
				require.NoError(t, err)
				require.True(t, decimal.NewFromInt(500).Equal(got.Balance))
			})
		})

		t.Run("unknown course", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, pair := newUser(t, s, "nk")

				resp, body := doAuthed(t, s, pair, http.MethodPost, srvURL+"/api/v1/courses/no-such-course/pay", "")

				require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
			})
		})
	})
}
