package admin

import (
	"context"

	"codeberg.org/pixelpress/server/api/rest/pagination"
	"codeberg.org/pixelpress/server/pixelpress/accounts"
)

// account operations reserved for administrators
type AccountAdmin interface {
	List(ctx context.Context, limit, offset int) ([]accounts.Account, int, error)
	AdjustCredits(ctx context.Context, accountID string, delta int, reason string) (int, error)
}

type ListAccountsResponse struct {
	Accounts   []accounts.Account `json:"accounts"`
	Pagination pagination.Meta    `json:"pagination"`
}

// delta may be negative; zero is rejected
type AdjustCreditsRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required,min=1,max=200"`
}

type AdjustCreditsResponse struct {
	AccountID string `json:"account_id"`
	Credits   int    `json:"credits"`
}
