package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/pixelpress/accounts"
)

type fakeAccounts struct {
	account   *accounts.Account
	txs       []accounts.Transaction
	lastLimit int
}

func (f *fakeAccounts) FindByID(_ context.Context, accountID string) (*accounts.Account, error) {
	if f.account == nil || f.account.ID != accountID {
		return nil, accounts.ErrNotFound
	}

	return f.account, nil
}

func (f *fakeAccounts) ListTransactions(_ context.Context, _ string, limit int) ([]accounts.Transaction, error) {
	f.lastLimit = limit
	return f.txs, nil
}

func serve(t *testing.T, repo AccountReader, userID, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewVerifier("users-secret")
	require.NoError(t, err)

	token, err := verifier.Generate(userID, "u@example.com", false, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), repo, verifier)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetMe(t *testing.T) {
	repo := &fakeAccounts{account: &accounts.Account{ID: "acct-1", Email: "u@example.com", Credits: 42}}

	w := serve(t, repo, "acct-1", "/api/v1/users/me")
	require.Equal(t, http.StatusOK, w.Code)

	var got accounts.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 42, got.Credits)
}

func TestGetMe_NotFound(t *testing.T) {
	w := serve(t, &fakeAccounts{}, "acct-unknown", "/api/v1/users/me")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTransactions(t *testing.T) {
	repo := &fakeAccounts{txs: []accounts.Transaction{
		{ID: "tx-1", Amount: -10, Category: "blog", BalanceAfter: 2},
	}}

	w := serve(t, repo, "acct-1", "/api/v1/users/me/transactions?limit=500")
	require.Equal(t, http.StatusOK, w.Code)

	var resp TransactionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, -10, resp.Transactions[0].Amount)
	assert.Equal(t, defaultTransactionLimit, repo.lastLimit)
}
