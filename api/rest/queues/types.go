package queues

import "codeberg.org/pixelpress/server/internal/queue"

// field values for a new or edited item; unknown keys are ignored
type ItemRequest struct {
	Fields map[string]string `json:"fields"`
}

type ListResponse struct {
	Queues []*queue.View `json:"queues"`
}

type ItemResponse struct {
	ItemID string      `json:"item_id"`
	Queue  *queue.View `json:"queue"`
}

type RunResponse struct {
	RunID string      `json:"run_id"`
	Queue *queue.View `json:"queue"`
}
