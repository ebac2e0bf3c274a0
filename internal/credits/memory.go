package credits

import (
	"context"
	"fmt"
	"sync"
)

// in-memory Ledger for tests and local development
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int
	debits   []DebitRecord
	failNext error
}

// one recorded debit
type DebitRecord struct {
	AccountID string
	Amount    int
	Category  string
	Reason    string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int)}
}

// sets an account's balance
func (l *MemoryLedger) SetBalance(accountID string, balance int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[accountID] = balance
}

// makes the next Debit call return err, to simulate backend failures
func (l *MemoryLedger) FailNextDebit(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failNext = err
}

// debits applied so far
func (l *MemoryLedger) Debits() []DebitRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]DebitRecord(nil), l.debits...)
}

func (l *MemoryLedger) Balance(_ context.Context, accountID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[accountID]
	if !ok {
		return 0, ErrAccountNotFound
	}

	return balance, nil
}

func (l *MemoryLedger) Debit(_ context.Context, accountID string, amount int, category, reason string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return false, err
	}

	if amount <= 0 {
		return false, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	balance, ok := l.balances[accountID]
	if !ok || balance < amount {
		return false, nil
	}

	l.balances[accountID] = balance - amount
	l.debits = append(l.debits, DebitRecord{AccountID: accountID, Amount: amount, Category: category, Reason: reason})

	return true, nil
}
