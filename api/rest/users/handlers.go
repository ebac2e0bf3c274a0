package users

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/errors"
	"codeberg.org/pixelpress/server/pixelpress/accounts"
)

const (
	defaultTransactionLimit = 20
	maxTransactionLimit     = 100
)

// GetMe godoc
// @Summary Get the current account
// @Description Returns the authenticated account's profile and credit balance
// @Tags users
// @Produce json
// @Success 200 {object} accounts.Account
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/users/me [get]
// @Security BearerAuth
func GetMe(repo AccountReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		account, err := repo.FindByID(c.Request.Context(), userID)
		if stderrors.Is(err, accounts.ErrNotFound) {
			errors.NotFound(c, "account")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to fetch account", err)
			return
		}

		c.JSON(http.StatusOK, account)
	}
}

// GetTransactions godoc
// @Summary List recent credit transactions
// @Tags users
// @Produce json
// @Param limit query int false "Max entries (default 20, max 100)"
// @Success 200 {object} TransactionsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/users/me/transactions [get]
// @Security BearerAuth
func GetTransactions(repo AccountReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		limit := defaultTransactionLimit
		if l := c.Query("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxTransactionLimit {
				limit = parsed
			}
		}

		txs, err := repo.ListTransactions(c.Request.Context(), userID, limit)
		if err != nil {
			errors.InternalError(c, "failed to fetch transactions", err)
			return
		}

		if txs == nil {
			txs = []accounts.Transaction{}
		}

		c.JSON(http.StatusOK, TransactionsResponse{Transactions: txs})
	}
}
