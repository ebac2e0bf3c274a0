package runstate

import (
	"context"
	"errors"
	"time"

	"codeberg.org/pixelpress/server/internal/imagegen"
)

// stored bytes could not be decoded into a Snapshot
var ErrCorruptSnapshot = errors.New("corrupt run state snapshot")

// identifies one persisted queue: an account's queue for one template
type Key struct {
	AccountID string
	Template  imagegen.TemplateType
}

// durable copy of a queue: its run (if any) and all of its items
type Snapshot struct {
	AccountID      string                `json:"accountId"`
	RunID          string                `json:"runId"`
	TemplateType   imagegen.TemplateType `json:"templateType"`
	StartTime      time.Time             `json:"startTime"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	TotalCount     int                   `json:"totalCount"`
	ProcessedCount int                   `json:"processedCount"`
	IsActive       bool                  `json:"isActive"`
	ItemIDs        []string              `json:"itemIds,omitempty"`
	Items          []ItemSnapshot        `json:"items"`
}

type ItemSnapshot struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Fields       map[string]string `json:"fields"`
	ResultImage  string            `json:"resultImage,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	StartedAt    *time.Time        `json:"startedAt,omitempty"`
}

// true when the snapshot carries a run (not just draft items)
func (s *Snapshot) HasRun() bool {
	return s.RunID != ""
}

// true when every item of the run has been processed
func (s *Snapshot) Complete() bool {
	return s.HasRun() && s.ProcessedCount >= s.TotalCount
}

// true when at least one item holds a result image
func (s *Snapshot) hasResults() bool {
	for _, item := range s.Items {
		if item.Status == "completed" {
			return true
		}
	}

	return false
}

// raw persistence of encoded snapshots; result images are kept beside the
// snapshot so each one is written once
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error) // nil, nil when absent
	Set(ctx context.Context, key Key, data []byte) error
	Delete(ctx context.Context, key Key) error // removes the images too
	Keys(ctx context.Context) ([]Key, error)

	SetImage(ctx context.Context, key Key, itemID, image string) error
	Images(ctx context.Context, key Key) (map[string]string, error)
}
