package websocket

import (
	"context"
	"time"

	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/internal/queue"
)

// current queue views for an account
type QueueSource interface {
	Snapshots(ctx context.Context, accountID string) ([]*queue.View, error)
}

// contains every queue of the connected account
type QueueStatePayload struct {
	Queues []*queue.View `json:"queues"`
}

// handles ping messages from clients (keep-alive)
func PingHandler() MessageHandler {
	return func(_ *Hub, client *Client, _ *Message) error {
		pongMsg, err := NewMessage(TypePong, client.UserID, nil)
		if err != nil {
			return err
		}

		client.Send(pongMsg) //nolint:errcheck,gosec // best-effort pong
		return nil
	}
}

// handles sync messages by replying with a fresh queue_state
func SyncHandler(source QueueSource) MessageHandler {
	return func(_ *Hub, client *Client, _ *Message) error {
		return SendQueueState(client, source)
	}
}

// sends the account's queues to one client
func SendQueueState(client *Client, source QueueSource) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	views, err := source.Snapshots(ctx, client.UserID)
	if err != nil {
		return err
	}

	msg, err := NewMessage(TypeQueueState, client.UserID, QueueStatePayload{Queues: views})
	if err != nil {
		return err
	}

	if err := client.Send(msg); err != nil {
		logger.Debug("queue_state not delivered",
			"client_id", client.ID,
			"error", err,
		)
	}

	return nil
}
