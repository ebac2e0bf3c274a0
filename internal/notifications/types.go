package notifications

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	default:
		return false
	}
}

// a user-visible outcome record
type Notification struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Kind          Kind           `json:"kind"`
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	RelatedRunID  string         `json:"related_run_id,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	Read          bool           `json:"read"`
	AutoDismissMS *int           `json:"auto_dismiss_ms,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type CreateRequest struct {
	Kind         Kind
	Title        string
	Message      string
	RelatedRunID string
	Data         map[string]any

	// zero keeps the notification until the user dismisses it
	AutoDismiss time.Duration
}

// append-only notification log; entries change only by toggling read
type Log interface {
	Notify(ctx context.Context, userID string, req *CreateRequest) (string, error)
	List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Remove(ctx context.Context, userID, notificationID string) error
	ClearAll(ctx context.Context, userID string) error
}

// receives every notification after it is stored
type Publisher interface {
	PublishNotification(userID string, n *Notification)
}

func autoDismissMS(d time.Duration) *int {
	if d <= 0 {
		return nil
	}

	ms := int(d / time.Millisecond)
	return &ms
}
