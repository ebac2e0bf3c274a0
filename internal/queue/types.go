package queue

import (
	"time"

	"codeberg.org/pixelpress/server/internal/imagegen"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// one generation request in a queue
type Item struct {
	ID           string                `json:"id"`
	TemplateType imagegen.TemplateType `json:"template_type"`
	Fields       map[string]string     `json:"fields"`
	Status       Status                `json:"status"`
	ResultImage  string                `json:"result_image,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	StartedAt    *time.Time            `json:"started_at,omitempty"`
}

// one batch submission
type Run struct {
	ID             string                `json:"id"`
	TemplateType   imagegen.TemplateType `json:"template_type"`
	StartTime      time.Time             `json:"start_time"`
	UpdatedAt      time.Time             `json:"updated_at"`
	TotalCount     int                   `json:"total_count"`
	ProcessedCount int                   `json:"processed_count"`
	Active         bool                  `json:"active"`
	ItemIDs        []string              `json:"item_ids"`
}

// read-only copy of a queue handed to callers and pushed to clients
type View struct {
	AccountID                 string                `json:"account_id"`
	TemplateType              imagegen.TemplateType `json:"template_type"`
	PerItemCost               int                   `json:"per_item_cost"`
	Run                       *Run                  `json:"run,omitempty"`
	Items                     []Item                `json:"items"`
	EstimatedSecondsRemaining *int                  `json:"estimated_seconds_remaining,omitempty"`
}

// receives a fresh View after every queue change
type Publisher interface {
	PublishQueue(accountID string, view *View)
}

func (it *Item) clone() Item {
	out := *it
	out.Fields = cloneFields(it.Fields)

	if it.StartedAt != nil {
		started := *it.StartedAt
		out.StartedAt = &started
	}

	return out
}

func (r *Run) clone() *Run {
	out := *r
	out.ItemIDs = append([]string(nil), r.ItemIDs...)
	return &out
}

func (r *Run) contains(itemID string) bool {
	for _, id := range r.ItemIDs {
		if id == itemID {
			return true
		}
	}

	return false
}

var knownFields = []string{imagegen.FieldTitle, imagegen.FieldContent, imagegen.FieldStyle, imagegen.FieldColour}

// copies the recognised fields, so every item carries all four keys
func normalizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(knownFields))

	for _, name := range knownFields {
		out[name] = fields[name]
	}

	return out
}

func cloneFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))

	for k, v := range fields {
		out[k] = v
	}

	return out
}
