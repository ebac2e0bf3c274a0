package queue

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/internal/notifications"
)

const (
	interruptedMessage = "generation interrupted before it finished"
	resetMessage       = "run reset after it stopped making progress"
)

// starts the processing goroutine for the current run
func (q *Queue) spawnLocked(runID string) {
	cancelled := q.cancelCh
	done := q.done
	e := q.engine
	q.worker = done

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		q.process(e.ctx, runID, cancelled, done)
	}()
}

// works through the run's items one at a time, in insertion order
func (q *Queue) process(ctx context.Context, runID string, cancelled <-chan struct{}, done chan struct{}) {
	defer close(done)

	activeRuns.Inc()
	defer activeRuns.Dec()

	for n := 0; ; n++ {
		if n > 0 && q.engine.delay > 0 {
			timer := time.NewTimer(q.engine.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-cancelled:
				timer.Stop()
			case <-timer.C:
			}
		}

		if ctx.Err() != nil {
			return
		}

		itemID, fields, ok := q.beginItem(runID)
		if !ok {
			break
		}

		image, err := q.engine.generator.Generate(ctx, q.template, fields)

		// shutting down: the item stays in progress and is recorded as
		// interrupted when the run is restored
		if ctx.Err() != nil {
			return
		}

		q.finishItem(runID, itemID, image, err)
	}

	q.finishRun(runID)
}

// marks the next queued run member in progress
func (q *Queue) beginItem(runID string) (string, map[string]string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.run == nil || q.run.ID != runID || !q.run.Active {
		return "", nil, false
	}

	for _, id := range q.run.ItemIDs {
		item := q.findLocked(id)
		if item == nil || item.Status != StatusPending {
			continue
		}

		now := q.engine.now()
		item.Status = StatusInProgress
		item.StartedAt = &now
		q.inFlight = id
		q.run.UpdatedAt = now
		q.changedLocked()

		return id, cloneFields(item.Fields), true
	}

	return "", nil, false
}

func (q *Queue) finishItem(runID, itemID, image string, genErr error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// reset by the watchdog while the call was in flight
	if q.run == nil || q.run.ID != runID {
		return
	}

	q.inFlight = ""

	item := q.findLocked(itemID)
	if item == nil {
		return
	}

	if genErr == nil {
		item.Status = StatusCompleted
		item.ResultImage = image
		item.ErrorMessage = ""
		q.saveImageLocked(itemID, image)
	} else {
		item.Status = StatusFailed
		item.ErrorMessage = imagegen.FailureMessage(genErr)

		logger.Warn("bulk item failed",
			"account_id", q.accountID,
			"run_id", runID,
			"item_id", itemID,
			"error", genErr,
		)
	}

	itemsProcessedTotal.WithLabelValues(string(q.template), string(item.Status)).Inc()

	if q.run.ProcessedCount < q.run.TotalCount {
		q.run.ProcessedCount++
	}

	q.run.UpdatedAt = q.engine.now()
	q.persistLocked()
	q.publishLocked(itemID)
}

func (q *Queue) saveImageLocked(itemID, image string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := q.engine.states.SaveResultImage(ctx, q.key(), itemID, image); err != nil {
		logger.ErrorErr(err, "failed to persist result image",
			"account_id", q.accountID,
			"template", q.template,
			"item_id", itemID,
		)
	}
}

// marks the run inactive, reports its outcome and schedules the clear
func (q *Queue) finishRun(runID string) {
	q.mu.Lock()

	if q.run == nil || q.run.ID != runID {
		q.mu.Unlock()
		return
	}

	cancelled := !q.run.Active
	q.run.Active = false
	q.run.UpdatedAt = q.engine.now()

	completed, failed := 0, 0
	for _, id := range q.run.ItemIDs {
		item := q.findLocked(id)
		if item == nil {
			continue
		}

		switch item.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}

	total := q.run.TotalCount
	q.changedLocked()
	q.mu.Unlock()

	outcome := "completed"
	if cancelled {
		outcome = "cancelled"
	}

	runsTotal.WithLabelValues(string(q.template), outcome).Inc()

	logger.Info("bulk run finished",
		"account_id", q.accountID,
		"template", q.template,
		"run_id", runID,
		"outcome", outcome,
		"completed", completed,
		"failed", failed,
		"total", total,
	)

	req := &notifications.CreateRequest{
		Kind:         notifications.KindSuccess,
		Title:        "Bulk generation complete",
		Message:      fmt.Sprintf("%d of %d %s images generated successfully.", completed, total, q.template.ImageType()),
		RelatedRunID: runID,
		Data: map[string]any{
			"imageCount":   completed,
			"failedCount":  failed,
			"totalCount":   total,
			"templateType": string(q.template),
		},
	}

	if cancelled {
		req.Kind = notifications.KindWarning
		req.Title = "Bulk generation cancelled"
		req.Message = fmt.Sprintf("%d of %d images were generated before the run was cancelled.", completed, total)
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	q.notify(ctx, req)

	time.AfterFunc(q.engine.grace, func() {
		q.clearFinishedRun(runID)
	})
}

// forgets a finished run and its persisted state; the items stay in memory
// and leftover drafts stay persisted
func (q *Queue) clearFinishedRun(runID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.run == nil || q.run.ID != runID || q.run.Active {
		return
	}

	q.run = nil

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := q.engine.states.ClearRunState(ctx, q.key()); err != nil {
		logger.ErrorErr(err, "failed to clear run state",
			"account_id", q.accountID,
			"template", q.template,
			"run_id", runID,
		)
	}

	if q.hasDraftsLocked() {
		q.changedLocked()
		return
	}

	q.touched = q.engine.now()
	q.publishLocked("")
}

// force-resets an active run whose last update is older than the stale
// threshold; reports whether it did
func (q *Queue) resetIfStale(ctx context.Context) bool {
	q.mu.Lock()

	r := q.run
	if r == nil || !r.Active {
		q.mu.Unlock()
		return false
	}

	if !q.engine.states.IsStale(q.snapshotLocked()) {
		q.mu.Unlock()
		return false
	}

	r.Active = false
	close(q.cancelCh)

	for _, item := range q.items {
		if item.Status == StatusInProgress {
			item.Status = StatusFailed
			item.ErrorMessage = resetMessage
		}
	}

	// the stuck goroutine is abandoned; its late result is dropped
	q.run = nil
	q.inFlight = ""
	q.worker = nil

	clearCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	if err := q.engine.states.ClearRunState(clearCtx, q.key()); err != nil {
		logger.ErrorErr(err, "failed to clear stale run state",
			"account_id", q.accountID,
			"run_id", r.ID,
		)
	}
	cancel()

	if q.hasDraftsLocked() {
		q.persistLocked()
	}

	q.touched = q.engine.now()
	q.publishLocked("")
	q.mu.Unlock()

	runsTotal.WithLabelValues(string(q.template), "reset").Inc()

	q.notify(ctx, &notifications.CreateRequest{
		Kind:         notifications.KindWarning,
		Title:        "Bulk generation reset",
		Message:      fmt.Sprintf("The run stopped making progress after %d of %d images and was reset.", r.ProcessedCount, r.TotalCount),
		RelatedRunID: r.ID,
		Data: map[string]any{
			"processedCount": r.ProcessedCount,
			"totalCount":     r.TotalCount,
			"templateType":   string(q.template),
		},
	})

	return true
}
