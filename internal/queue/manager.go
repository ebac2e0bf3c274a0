package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/pixelpress/server/internal/credits"
	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/internal/notifications"
	"codeberg.org/pixelpress/server/internal/runstate"
)

type Config struct {
	Generator imagegen.Generator
	Ledger    credits.Ledger
	Notifier  notifications.Log
	States    *runstate.Repository
	Publisher Publisher

	// pause between consecutive webhook calls of a run
	RequestDelay time.Duration

	// how long a finished run stays visible before its state is cleared
	ClearGrace time.Duration

	// how long a queue without a run stays in memory after its last change;
	// zero keeps queues forever
	IdleEviction time.Duration
}

// owns one Queue per (account, template) and enforces one active run per
// account
type Manager struct {
	engine *engine
	stop   context.CancelFunc

	mu       sync.Mutex
	queues   map[runstate.Key]*Queue
	starting map[string]*sync.Mutex
}

// creates a new manager; processing goroutines live until Shutdown
func NewManager(cfg Config) *Manager {
	ctx, stop := context.WithCancel(context.Background())

	return &Manager{
		engine: &engine{
			generator: cfg.Generator,
			ledger:    cfg.Ledger,
			notifier:  cfg.Notifier,
			states:    cfg.States,
			publisher: cfg.Publisher,
			delay:     cfg.RequestDelay,
			grace:     cfg.ClearGrace,
			idle:      cfg.IdleEviction,
			now:       time.Now,
			ctx:       ctx,
		},
		stop:     stop,
		queues:   make(map[runstate.Key]*Queue),
		starting: make(map[string]*sync.Mutex),
	}
}

// returns the account's queue for a template, restoring persisted state on
// first access
func (m *Manager) Queue(ctx context.Context, accountID string, t imagegen.TemplateType) (*Queue, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w %q", imagegen.ErrUnknownTemplate, t)
	}

	key := runstate.Key{AccountID: accountID, Template: t}

	m.mu.Lock()
	q, ok := m.queues[key]
	m.mu.Unlock()

	if ok {
		return q, nil
	}

	snapshot, err := m.engine.states.LoadRunState(ctx, key)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if q, ok := m.queues[key]; ok {
		return q, nil
	}

	q = newQueue(accountID, t, m.engine)
	m.queues[key] = q

	if snapshot != nil {
		m.restore(q, snapshot)
	}

	return q, nil
}

func (m *Manager) restore(q *Queue, snapshot *runstate.Snapshot) {
	q.mu.Lock()
	defer q.mu.Unlock()

	resume := q.restoreLocked(snapshot)

	if q.run == nil {
		return
	}

	q.changedLocked()

	if resume {
		logger.Info("resuming bulk run",
			"account_id", q.accountID,
			"template", q.template,
			"run_id", q.run.ID,
			"processed", q.run.ProcessedCount,
			"total", q.run.TotalCount,
		)

		q.spawnLocked(q.run.ID)
		return
	}

	runID := q.run.ID
	time.AfterFunc(m.engine.grace, func() {
		q.clearFinishedRun(runID)
	})
}

// starts a run on the account's queue for a template unless the account
// already has an active run on any template
func (m *Manager) StartRun(ctx context.Context, accountID string, t imagegen.TemplateType) (string, error) {
	lock := m.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	q, err := m.Queue(ctx, accountID, t)
	if err != nil {
		return "", err
	}

	for _, other := range m.accountQueues(accountID) {
		if other != q && other.Busy() {
			return "", ErrRunActive
		}
	}

	return q.StartRun(ctx)
}

// restores every persisted queue, resuming active runs; returns how many
// queues were restored
func (m *Manager) Resume(ctx context.Context) (int, error) {
	keys, err := m.engine.states.Keys(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, key := range keys {
		if _, err := m.Queue(ctx, key.AccountID, key.Template); err != nil {
			logger.ErrorErr(err, "failed to restore queue",
				"account_id", key.AccountID,
				"template", key.Template,
			)
			continue
		}

		restored++
	}

	return restored, nil
}

// force-resets active runs that stopped making progress; returns how many
func (m *Manager) ResetStaleRuns(ctx context.Context) int {
	m.mu.Lock()
	queues := make([]*Queue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	reset := 0
	for _, q := range queues {
		if q.resetIfStale(ctx) {
			logger.Warn("reset stale bulk run",
				"account_id", q.accountID,
				"template", q.template,
			)
			reset++
		}
	}

	return reset
}

// drops queues that have no run and sat unchanged for the idle period;
// their drafts are reloaded from the run state store on next access.
// Returns how many were dropped.
func (m *Manager) EvictIdle() int {
	if m.engine.idle <= 0 {
		return 0
	}

	cutoff := m.engine.now().Add(-m.engine.idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for key, q := range m.queues {
		if q.idleSince(cutoff) {
			delete(m.queues, key)
			evicted++
		}
	}

	return evicted
}

// views of the account's queues, one per template
func (m *Manager) Snapshots(ctx context.Context, accountID string) ([]*View, error) {
	views := make([]*View, 0, len(imagegen.Templates))

	for _, t := range imagegen.Templates {
		q, err := m.Queue(ctx, accountID, t)
		if err != nil {
			return nil, err
		}

		views = append(views, q.Snapshot())
	}

	return views, nil
}

// stops every processing goroutine and waits for them to exit; runs stay
// persisted and resume on the next boot
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stop()

	done := make(chan struct{})
	go func() {
		m.engine.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) accountQueues(accountID string) []*Queue {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Queue
	for key, q := range m.queues {
		if key.AccountID == accountID {
			out = append(out, q)
		}
	}

	return out
}

func (m *Manager) accountLock(accountID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.starting[accountID]
	if !ok {
		lock = &sync.Mutex{}
		m.starting[accountID] = lock
	}

	return lock
}
