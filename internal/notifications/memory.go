package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// in-memory Log for tests and local development
type MemoryLog struct {
	mu      sync.RWMutex
	entries map[string][]*Notification
	now     func() time.Time
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		entries: make(map[string][]*Notification),
		now:     time.Now,
	}
}

func (l *MemoryLog) Notify(_ context.Context, userID string, req *CreateRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := &Notification{
		ID:            uuid.NewString(),
		UserID:        userID,
		Kind:          req.Kind,
		Title:         req.Title,
		Message:       req.Message,
		RelatedRunID:  req.RelatedRunID,
		Data:          req.Data,
		AutoDismissMS: autoDismissMS(req.AutoDismiss),
		CreatedAt:     l.now(),
	}

	l.entries[userID] = append(l.entries[userID], n)
	return n.ID, nil
}

// newest first, like the Postgres listing
func (l *MemoryLog) List(_ context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Notification{}

	for i := len(l.entries[userID]) - 1; i >= 0; i-- {
		n := l.entries[userID][i]
		if unreadOnly && n.Read {
			continue
		}

		out = append(out, *n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (l *MemoryLog) UnreadCount(_ context.Context, userID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0

	for _, n := range l.entries[userID] {
		if !n.Read {
			count++
		}
	}

	return count, nil
}

func (l *MemoryLog) MarkRead(_ context.Context, userID, notificationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, n := range l.entries[userID] {
		if n.ID == notificationID {
			n.Read = true
			return nil
		}
	}

	return ErrNotFound
}

func (l *MemoryLog) MarkAllRead(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, n := range l.entries[userID] {
		n.Read = true
	}

	return nil
}

func (l *MemoryLog) Remove(_ context.Context, userID, notificationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.entries[userID]

	for i, n := range entries {
		if n.ID == notificationID {
			l.entries[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}

	return ErrNotFound
}

func (l *MemoryLog) ClearAll(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, userID)
	return nil
}
