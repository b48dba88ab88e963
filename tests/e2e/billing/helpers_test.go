package billing

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studyon/billing/internal/models"
	"github.com/studyon/billing/tests/e2e"
)

// Register user and return its account with auth tokens
func newUser(t *testing.T, s e2e.Services, username string) (models.Account, models.TokenPair) {
	t.Helper()

	pair, err := s.AuthService.Register(t.Context(), username, "StrongEnoughPassword")
	require.NoError(t, err)

	user, err := s.UserService.GetUserByUsername(t.Context(), username)
	require.NoError(t, err)

	account, err := s.UserService.GetAccount(t.Context(), user.ID)
	require.NoError(t, err)

	return account, pair
}

// Make authenticated request and return response with its body read
func doAuthed(t *testing.T, s e2e.Services, pair models.TokenPair, method string, url string, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	s.AuthService.SetTokenPairToRequest(req, pair)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(respBody)
}
