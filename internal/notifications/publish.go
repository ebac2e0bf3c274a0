package notifications

import (
	"context"
	"time"
)

// forwards every stored notification to a Publisher (the websocket hub)
type PublishingLog struct {
	Log
	publisher Publisher
}

func WithPublisher(log Log, publisher Publisher) *PublishingLog {
	return &PublishingLog{Log: log, publisher: publisher}
}

func (p *PublishingLog) Notify(ctx context.Context, userID string, req *CreateRequest) (string, error) {
	id, err := p.Log.Notify(ctx, userID, req)
	if err != nil {
		return "", err
	}

	if p.publisher != nil {
		p.publisher.PublishNotification(userID, &Notification{
			ID:            id,
			UserID:        userID,
			Kind:          req.Kind,
			Title:         req.Title,
			Message:       req.Message,
			RelatedRunID:  req.RelatedRunID,
			Data:          req.Data,
			AutoDismissMS: autoDismissMS(req.AutoDismiss),
			CreatedAt:     time.Now(),
		})
	}

	return id, nil
}
