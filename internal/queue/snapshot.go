package queue

import (
	"codeberg.org/pixelpress/server/internal/runstate"
)

// without a run only drafts are kept; results of cleared runs live in
// memory until the queue is evicted
func (q *Queue) snapshotLocked() *runstate.Snapshot {
	s := &runstate.Snapshot{
		AccountID:    q.accountID,
		TemplateType: q.template,
		UpdatedAt:    q.engine.now(),
		Items:        make([]runstate.ItemSnapshot, 0, len(q.items)),
	}

	if q.run != nil {
		s.RunID = q.run.ID
		s.StartTime = q.run.StartTime
		s.UpdatedAt = q.run.UpdatedAt
		s.TotalCount = q.run.TotalCount
		s.ProcessedCount = q.run.ProcessedCount
		s.IsActive = q.run.Active
		s.ItemIDs = append([]string(nil), q.run.ItemIDs...)
	}

	for _, item := range q.items {
		if q.run == nil && item.Status.terminal() {
			continue
		}

		c := item.clone()
		s.Items = append(s.Items, runstate.ItemSnapshot{
			ID:           c.ID,
			Status:       string(c.Status),
			Fields:       c.Fields,
			ResultImage:  c.ResultImage,
			ErrorMessage: c.ErrorMessage,
			CreatedAt:    c.CreatedAt,
			StartedAt:    c.StartedAt,
		})
	}

	return s
}

// loads a persisted snapshot into an empty queue; reports whether the
// restored run is still active and must resume
func (q *Queue) restoreLocked(s *runstate.Snapshot) bool {
	q.items = make([]*Item, 0, len(s.Items))

	for _, it := range s.Items {
		item := &Item{
			ID:           it.ID,
			TemplateType: q.template,
			Fields:       normalizeFields(it.Fields),
			Status:       parseStatus(it.Status),
			ResultImage:  it.ResultImage,
			ErrorMessage: it.ErrorMessage,
			CreatedAt:    it.CreatedAt,
			StartedAt:    it.StartedAt,
		}

		q.items = append(q.items, item)
	}

	if !s.HasRun() {
		for _, item := range q.items {
			if item.Status == StatusInProgress {
				item.Status = StatusPending
			}
		}

		return false
	}

	q.run = &Run{
		ID:             s.RunID,
		TemplateType:   q.template,
		StartTime:      s.StartTime,
		UpdatedAt:      s.UpdatedAt,
		TotalCount:     s.TotalCount,
		ProcessedCount: s.ProcessedCount,
		Active:         s.IsActive,
		ItemIDs:        append([]string(nil), s.ItemIDs...),
	}

	// the outcome of a call cut off by a restart is unknown
	for _, item := range q.items {
		if item.Status != StatusInProgress {
			continue
		}

		item.Status = StatusFailed
		item.ErrorMessage = interruptedMessage
		itemsProcessedTotal.WithLabelValues(string(q.template), string(StatusFailed)).Inc()

		if q.run.contains(item.ID) && q.run.ProcessedCount < q.run.TotalCount {
			q.run.ProcessedCount++
		}
	}

	if !q.run.Active {
		return false
	}

	q.cancelCh = make(chan struct{})
	q.done = make(chan struct{})

	return true
}

func parseStatus(value string) Status {
	switch s := Status(value); s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return s
	default:
		return StatusPending
	}
}
