package users

import (
	"context"

	"codeberg.org/pixelpress/server/pixelpress/accounts"
)

// account lookups the user routes need
type AccountReader interface {
	FindByID(ctx context.Context, accountID string) (*accounts.Account, error)
	ListTransactions(ctx context.Context, accountID string, limit int) ([]accounts.Transaction, error)
}

type TransactionsResponse struct {
	Transactions []accounts.Transaction `json:"transactions"`
}
