package queue

import (
	"errors"
	"fmt"
)

var (
	ErrNoValidItems        = errors.New("no items have all required fields filled in")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrCreditDebitFailed   = errors.New("credit debit failed")
	ErrRunActive           = errors.New("a bulk run is already in progress")
	ErrQueueRunning        = errors.New("queue is running")
	ErrNoActiveRun         = errors.New("no active run")
	ErrItemNotFound        = errors.New("item not found")
	ErrItemInFlight        = errors.New("item is being processed")
)

// balance below the batch cost
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: batch needs %d, balance is %d", e.Required, e.Available)
}

func (e *InsufficientCreditsError) Unwrap() error {
	return ErrInsufficientCredits
}
