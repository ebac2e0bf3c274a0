package runstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/pixelpress/server/internal/logger"
)

// why a stored snapshot was dropped instead of restored
type DiscardReason string

const (
	DiscardNone     DiscardReason = ""
	DiscardStale    DiscardReason = "stale"
	DiscardComplete DiscardReason = "complete"
	DiscardCorrupt  DiscardReason = "corrupt"
)

// applies the restore policy on top of a Store: stale active runs,
// completed runs and corrupt snapshots are discarded instead of returned
type Repository struct {
	store      Store
	staleAfter time.Duration
	now        func() time.Time
}

func NewRepository(store Store, staleAfter time.Duration) *Repository {
	return &Repository{
		store:      store,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// the snapshot to restore for key, or nil when there is none worth restoring
func (r *Repository) LoadRunState(ctx context.Context, key Key) (*Snapshot, error) {
	snapshot, reason, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}

	if reason == DiscardNone {
		return snapshot, nil
	}

	logger.Warn("discarding persisted run state",
		"account_id", key.AccountID,
		"template", key.Template,
		"reason", reason,
	)

	if err := r.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to clear discarded run state: %w", err)
	}

	return nil, nil
}

func (r *Repository) load(ctx context.Context, key Key) (*Snapshot, DiscardReason, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, DiscardNone, fmt.Errorf("failed to read run state: %w", err)
	}

	if data == nil {
		return nil, DiscardNone, nil
	}

	snapshot, err := Decode(data)
	if errors.Is(err, ErrCorruptSnapshot) {
		return nil, DiscardCorrupt, nil
	}

	if err != nil {
		return nil, DiscardNone, err
	}

	if snapshot.Complete() {
		return nil, DiscardComplete, nil
	}

	if r.IsStale(snapshot) {
		return nil, DiscardStale, nil
	}

	if snapshot.hasResults() {
		images, err := r.store.Images(ctx, key)
		if err != nil {
			return nil, DiscardNone, fmt.Errorf("failed to read result images: %w", err)
		}

		for i := range snapshot.Items {
			if image, ok := images[snapshot.Items[i].ID]; ok {
				snapshot.Items[i].ResultImage = image
			}
		}
	}

	return snapshot, DiscardNone, nil
}

// writes the snapshot without result images; those are stored once each
// through SaveResultImage
func (r *Repository) SaveRunState(ctx context.Context, key Key, snapshot *Snapshot) error {
	stored := *snapshot
	stored.Items = make([]ItemSnapshot, len(snapshot.Items))

	for i, item := range snapshot.Items {
		item.ResultImage = ""
		stored.Items[i] = item
	}

	data, err := Encode(&stored)
	if err != nil {
		return err
	}

	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write run state: %w", err)
	}

	return nil
}

func (r *Repository) SaveResultImage(ctx context.Context, key Key, itemID, image string) error {
	if err := r.store.SetImage(ctx, key, itemID, image); err != nil {
		return fmt.Errorf("failed to write result image: %w", err)
	}

	return nil
}

func (r *Repository) ClearRunState(ctx context.Context, key Key) error {
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to clear run state: %w", err)
	}

	return nil
}

// every key with persisted state
func (r *Repository) Keys(ctx context.Context) ([]Key, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list run state keys: %w", err)
	}

	return keys, nil
}

// true when an active run has gone longer than the threshold without an
// update; drafts and finished runs never go stale
func (r *Repository) IsStale(snapshot *Snapshot) bool {
	if r.staleAfter <= 0 || !snapshot.IsActive {
		return false
	}

	last := snapshot.UpdatedAt
	if last.IsZero() {
		last = snapshot.StartTime
	}

	return r.now().Sub(last) > r.staleAfter
}

func (r *Repository) StaleAfter() time.Duration {
	return r.staleAfter
}
