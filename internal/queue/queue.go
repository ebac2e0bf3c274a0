package queue

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeberg.org/pixelpress/server/internal/credits"
	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/internal/notifications"
	"codeberg.org/pixelpress/server/internal/runstate"
)

const persistTimeout = 5 * time.Second

// dependencies shared by every queue of a Manager
type engine struct {
	generator imagegen.Generator
	ledger    credits.Ledger
	notifier  notifications.Log
	states    *runstate.Repository
	publisher Publisher
	delay     time.Duration
	grace     time.Duration
	idle      time.Duration
	now       func() time.Time

	ctx context.Context
	wg  sync.WaitGroup
}

// an account's bulk submission queue for one template
type Queue struct {
	accountID string
	template  imagegen.TemplateType
	engine    *engine

	mu       sync.Mutex
	items    []*Item
	run      *Run
	starting bool
	inFlight string
	cancelCh chan struct{}
	done     chan struct{}
	// done of a processing goroutine that may still hold a generator call
	worker   chan struct{}
	touched  time.Time
}

func newQueue(accountID string, t imagegen.TemplateType, e *engine) *Queue {
	return &Queue{
		accountID: accountID,
		template:  t,
		engine:    e,
		touched:   e.now(),
	}
}

func (q *Queue) AccountID() string {
	return q.accountID
}

func (q *Queue) Template() imagegen.TemplateType {
	return q.template
}

// appends a pending item; nil fields leave every field empty
func (q *Queue) AddItem(fields map[string]string) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := &Item{
		ID:           uuid.NewString(),
		TemplateType: q.template,
		Fields:       normalizeFields(fields),
		Status:       StatusPending,
		CreatedAt:    q.engine.now(),
	}

	q.items = append(q.items, item)
	q.changedLocked()

	return item.ID
}

// replaces an item's fields; a failed item goes back to pending
func (q *Queue) UpdateItemFields(itemID string, fields map[string]string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.busyLocked() {
		return ErrQueueRunning
	}

	item := q.findLocked(itemID)
	if item == nil {
		return ErrItemNotFound
	}

	item.Fields = normalizeFields(fields)

	if item.Status == StatusFailed {
		item.Status = StatusPending
		item.ErrorMessage = ""
	}

	q.changedLocked()
	return nil
}

// removes an item; a queued member of the active run also leaves the run
func (q *Queue) RemoveItem(itemID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexLocked(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}

	if q.starting {
		return ErrQueueRunning
	}

	if itemID == q.inFlight {
		return ErrItemInFlight
	}

	item := q.items[idx]
	if q.run != nil && q.run.Active && item.Status == StatusPending && q.run.contains(itemID) {
		ids := q.run.ItemIDs[:0]
		for _, id := range q.run.ItemIDs {
			if id != itemID {
				ids = append(ids, id)
			}
		}

		q.run.ItemIDs = ids
		q.run.TotalCount--
		q.run.UpdatedAt = q.engine.now()
	}

	q.items = append(q.items[:idx], q.items[idx+1:]...)
	q.changedLocked()

	return nil
}

// drops every item and any finished run
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.busyLocked() {
		return ErrQueueRunning
	}

	q.items = nil
	q.run = nil
	q.changedLocked()

	return nil
}

// validates the batch, debits its cost once and starts processing.
// Manager.StartRun additionally enforces one active run per account.
func (q *Queue) StartRun(ctx context.Context) (string, error) {
	q.mu.Lock()

	if q.busyLocked() {
		q.mu.Unlock()
		return "", ErrRunActive
	}

	valid := q.validItemIDsLocked()
	if len(valid) == 0 {
		q.mu.Unlock()
		return "", ErrNoValidItems
	}

	// edits and removals are refused until the debit settles
	q.starting = true
	q.mu.Unlock()

	cost := len(valid) * q.template.Cost()

	if err := q.debit(ctx, cost, len(valid)); err != nil {
		q.mu.Lock()
		q.starting = false
		q.mu.Unlock()
		return "", err
	}

	q.mu.Lock()
	now := q.engine.now()

	run := &Run{
		ID:           uuid.NewString(),
		TemplateType: q.template,
		StartTime:    now,
		UpdatedAt:    now,
		TotalCount:   len(valid),
		ItemIDs:      valid,
		Active:       true,
	}

	q.starting = false
	q.run = run
	q.cancelCh = make(chan struct{})
	q.done = make(chan struct{})
	q.changedLocked()
	q.spawnLocked(run.ID)
	q.mu.Unlock()

	logger.Info("bulk run started",
		"account_id", q.accountID,
		"template", q.template,
		"run_id", run.ID,
		"items", run.TotalCount,
		"cost", cost,
	)

	q.notify(ctx, &notifications.CreateRequest{
		Kind:         notifications.KindInfo,
		Title:        "Bulk generation started",
		Message:      fmt.Sprintf("%d %s images queued for %d credits.", run.TotalCount, q.template.ImageType(), cost),
		RelatedRunID: run.ID,
		Data: map[string]any{
			"totalCount":   run.TotalCount,
			"cost":         cost,
			"templateType": string(q.template),
		},
		AutoDismiss: 5 * time.Second,
	})

	return run.ID, nil
}

func (q *Queue) debit(ctx context.Context, cost, count int) error {
	balance, err := q.engine.ledger.Balance(ctx, q.accountID)
	if err != nil {
		return fmt.Errorf("failed to read credit balance: %w", err)
	}

	if balance < cost {
		return &InsufficientCreditsError{Required: cost, Available: balance}
	}

	reason := fmt.Sprintf("Bulk %s generation (%d images)", q.template.ImageType(), count)

	ok, err := q.engine.ledger.Debit(ctx, q.accountID, cost, string(q.template), reason)
	if err == nil && ok {
		return nil
	}

	q.notify(ctx, &notifications.CreateRequest{
		Kind:    notifications.KindError,
		Title:   "Credit deduction failed",
		Message: "Your credits could not be deducted, so the batch was not started.",
		Data: map[string]any{
			"cost":         cost,
			"templateType": string(q.template),
		},
	})

	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreditDebitFailed, err)
	}

	return ErrCreditDebitFailed
}

// halts the active run; the item already in flight finishes on its own
func (q *Queue) CancelRun() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.run == nil || !q.run.Active {
		return ErrNoActiveRun
	}

	q.run.Active = false
	q.run.UpdatedAt = q.engine.now()
	close(q.cancelCh)
	q.changedLocked()

	logger.Info("bulk run cancelled",
		"account_id", q.accountID,
		"template", q.template,
		"run_id", q.run.ID,
		"processed", q.run.ProcessedCount,
		"total", q.run.TotalCount,
	)

	return nil
}

// seconds until the active run finishes, extrapolated from the average so
// far; nil with no active run or nothing processed yet
func (q *Queue) EstimatedTimeRemaining() *int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.etaLocked()
}

func (q *Queue) etaLocked() *int {
	r := q.run
	if r == nil || !r.Active || r.ProcessedCount == 0 {
		return nil
	}

	elapsed := q.engine.now().Sub(r.StartTime).Seconds()
	remaining := r.TotalCount - r.ProcessedCount
	seconds := int(math.Ceil(elapsed / float64(r.ProcessedCount) * float64(remaining)))

	return &seconds
}

func (q *Queue) Snapshot() *View {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.viewLocked()
}

// true while a run is active, being started or still finishing its
// in-flight item after a cancel
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.busyLocked()
}

// blocks until the processing goroutine of the latest run has exited
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	done := q.done
	q.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) busyLocked() bool {
	return q.starting || (q.run != nil && q.run.Active) || q.workingLocked()
}

func (q *Queue) workingLocked() bool {
	if q.worker == nil {
		return false
	}

	select {
	case <-q.worker:
		return false
	default:
		return true
	}
}

func (q *Queue) validItemIDsLocked() []string {
	var ids []string

	for _, item := range q.items {
		if item.Status == StatusPending && q.template.IsComplete(item.Fields) {
			ids = append(ids, item.ID)
		}
	}

	return ids
}

func (q *Queue) indexLocked(itemID string) int {
	for i, item := range q.items {
		if item.ID == itemID {
			return i
		}
	}

	return -1
}

func (q *Queue) findLocked(itemID string) *Item {
	if idx := q.indexLocked(itemID); idx >= 0 {
		return q.items[idx]
	}

	return nil
}

func (q *Queue) viewLocked() *View {
	view := &View{
		AccountID:                 q.accountID,
		TemplateType:              q.template,
		PerItemCost:               q.template.Cost(),
		Items:                     make([]Item, 0, len(q.items)),
		EstimatedSecondsRemaining: q.etaLocked(),
	}

	for _, item := range q.items {
		view.Items = append(view.Items, item.clone())
	}

	if q.run != nil {
		view.Run = q.run.clone()
	}

	return view
}

func (q *Queue) key() runstate.Key {
	return runstate.Key{AccountID: q.accountID, Template: q.template}
}

// persists the state and pushes a fresh view to the account's clients
func (q *Queue) changedLocked() {
	q.persistLocked()
	q.publishLocked("")
}

func (q *Queue) persistLocked() {
	q.touched = q.engine.now()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	if q.run == nil && !q.hasDraftsLocked() {
		err = q.engine.states.ClearRunState(ctx, q.key())
	} else {
		err = q.engine.states.SaveRunState(ctx, q.key(), q.snapshotLocked())
	}

	if err != nil {
		logger.ErrorErr(err, "failed to persist queue state",
			"account_id", q.accountID,
			"template", q.template,
		)
	}
}

// pushes a view whose only result image is withImage's, so every image
// reaches the clients once, when its item completes
func (q *Queue) publishLocked(withImage string) {
	if q.engine.publisher == nil {
		return
	}

	view := q.viewLocked()
	for i := range view.Items {
		if view.Items[i].ID != withImage {
			view.Items[i].ResultImage = ""
		}
	}

	q.engine.publisher.PublishQueue(q.accountID, view)
}

// true when an item still waits to be submitted
func (q *Queue) hasDraftsLocked() bool {
	for _, item := range q.items {
		if !item.Status.terminal() {
			return true
		}
	}

	return false
}

// true when the queue has no run and has not changed since before cutoff
func (q *Queue) idleSince(cutoff time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.run == nil && !q.busyLocked() && q.touched.Before(cutoff)
}

func (q *Queue) notify(ctx context.Context, req *notifications.CreateRequest) {
	if q.engine.notifier == nil {
		return
	}

	if _, err := q.engine.notifier.Notify(ctx, q.accountID, req); err != nil {
		logger.ErrorErr(err, "failed to record notification",
			"account_id", q.accountID,
			"title", req.Title,
		)
	}
}
