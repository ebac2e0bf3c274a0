package accounts

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("account not found")
	ErrNegativeBalance = errors.New("adjustment would make the balance negative")
)

// transaction category for manual adjustments
const CategoryAdminAdjustment = "admin_adjustment"

// handles account database operations
type Repository struct {
	db *pgxpool.Pool
}

// an account profile kept by the account backend
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Credits   int       `json:"credits"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// one credit movement; negative amounts are debits
type Transaction struct {
	ID           string    `json:"id"`
	Amount       int       `json:"amount"`
	Category     string    `json:"category"`
	Reason       string    `json:"reason"`
	BalanceAfter int       `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}
