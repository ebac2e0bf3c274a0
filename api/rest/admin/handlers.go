package admin

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/api/rest/pagination"
	"codeberg.org/pixelpress/server/internal/errors"
	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/pixelpress/accounts"
)

// ListAccounts godoc
// @Summary List accounts (admin)
// @Description Paginated account listing with balances
// @Tags admin
// @Produce json
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListAccountsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /api/v1/admin/accounts [get]
// @Security BearerAuth
func ListAccounts(repo AccountAdmin) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := pagination.FromQuery(c, 50, 200)

		list, total, err := repo.List(c.Request.Context(), params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list accounts", err)
			return
		}

		if list == nil {
			list = []accounts.Account{}
		}

		c.JSON(http.StatusOK, ListAccountsResponse{
			Accounts:   list,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}

// AdjustCredits godoc
// @Summary Add or subtract credits (admin)
// @Description Applies a signed adjustment and records it as a credit transaction
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body AdjustCreditsRequest true "Adjustment"
// @Success 200 {object} AdjustCreditsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/admin/accounts/{id}/credits [post]
// @Security BearerAuth
func AdjustCredits(repo AccountAdmin) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		var req AdjustCreditsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		balance, err := repo.AdjustCredits(c.Request.Context(), accountID, req.Amount, req.Reason)
		switch {
		case stderrors.Is(err, accounts.ErrNotFound):
			errors.NotFound(c, "account")
			return
		case stderrors.Is(err, accounts.ErrNegativeBalance):
			errors.Conflict(c, errors.CodeInsufficientCredits, "adjustment would make the balance negative")
			return
		case err != nil:
			errors.InternalError(c, "failed to adjust credits", err)
			return
		}

		logger.Info("credits adjusted by admin",
			"account_id", accountID,
			"admin_id", c.GetString("user_id"),
			"amount", req.Amount,
			"balance", balance,
		)

		c.JSON(http.StatusOK, AdjustCreditsResponse{AccountID: accountID, Credits: balance})
	}
}
