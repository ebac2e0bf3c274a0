package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new account repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// finds an account by its ID
func (r *Repository) FindByID(ctx context.Context, accountID string) (*Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, queryFindByID, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return account, nil
}

// lists accounts newest first, with the total count for pagination
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Account, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCount).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	rows, err := r.db.Query(ctx, queryList, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan account: %w", err)
		}

		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, total, nil
}

// adds delta (possibly negative) to an account's balance and records the
// movement; returns the new balance
func (r *Repository) AdjustCredits(ctx context.Context, accountID string, delta int, reason string) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin adjustment: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var balance int

	err = tx.QueryRow(ctx, queryAdjustCredits, accountID, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, queryExists, accountID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to look up account: %w", err)
		}

		if !exists {
			return 0, ErrNotFound
		}

		return 0, ErrNegativeBalance
	}

	if err != nil {
		return 0, fmt.Errorf("failed to adjust credits: %w", err)
	}

	if _, err := tx.Exec(ctx, queryInsertTransaction, accountID, delta, CategoryAdminAdjustment, reason, balance); err != nil {
		return 0, fmt.Errorf("failed to record credit transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	return balance, nil
}

// most recent credit movements of an account
func (r *Repository) ListTransactions(ctx context.Context, accountID string, limit int) ([]Transaction, error) {
	rows, err := r.db.Query(ctx, queryListTransactions, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []Transaction{}

	for rows.Next() {
		var t Transaction
		var reason *string

		if err := rows.Scan(&t.ID, &t.Amount, &t.Category, &reason, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if reason != nil {
			t.Reason = *reason
		}

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	var fullName *string

	err := row.Scan(
		&account.ID,
		&account.Email,
		&fullName,
		&account.Credits,
		&account.IsAdmin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if fullName != nil {
		account.FullName = *fullName
	}

	return &account, nil
}
