package credits

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAccountNotFound = errors.New("account not found")

// per-account credit balance kept by the account backend
type Ledger interface {
	Balance(ctx context.Context, accountID string) (int, error)

	// deducts amount all-or-nothing; returns false without error when the
	// balance is too low
	Debit(ctx context.Context, accountID string, amount int, category, reason string) (bool, error)
}

// Ledger over the backend's profiles and credit_transactions tables
type PostgresLedger struct {
	db *pgxpool.Pool
}

func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Balance(ctx context.Context, accountID string) (int, error) {
	var balance int

	err := l.db.QueryRow(ctx, queryBalance, accountID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read credit balance: %w", err)
	}

	return balance, nil
}

func (l *PostgresLedger) Debit(ctx context.Context, accountID string, amount int, category, reason string) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin debit transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var balance int

	err = tx.QueryRow(ctx, queryDebit, accountID, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// either the account is missing or the balance is too low
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to debit credits: %w", err)
	}

	if _, err := tx.Exec(ctx, queryInsertTransaction, accountID, -amount, category, reason, balance); err != nil {
		return false, fmt.Errorf("failed to record credit transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit debit: %w", err)
	}

	debitedTotal.WithLabelValues(category).Add(float64(amount))
	return true, nil
}
