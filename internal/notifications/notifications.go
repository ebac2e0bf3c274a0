package notifications

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Log backed by the notifications table
type Service struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Notify(ctx context.Context, userID string, req *CreateRequest) (string, error) {
	n, err := s.Create(ctx, userID, req)
	if err != nil {
		return "", err
	}

	return n.ID, nil
}

// stores a notification and returns the full record
func (s *Service) Create(ctx context.Context, userID string, req *CreateRequest) (*Notification, error) {
	var dataJSON *string

	if req.Data != nil {
		bytes, err := json.Marshal(req.Data)
		if err != nil {
			return nil, err
		}

		str := string(bytes)
		dataJSON = &str
	}

	n := Notification{
		UserID:        userID,
		Kind:          req.Kind,
		Title:         req.Title,
		Message:       req.Message,
		RelatedRunID:  req.RelatedRunID,
		Data:          req.Data,
		AutoDismissMS: autoDismissMS(req.AutoDismiss),
	}

	err := s.db.QueryRow(
		ctx,
		queryCreate,
		userID,
		req.Kind,
		req.Title,
		req.Message,
		req.RelatedRunID,
		dataJSON,
		n.AutoDismissMS,
	).Scan(
		&n.ID,
		&n.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &n, nil
}

func (s *Service) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error) {
	query := queryListForUser
	if unreadOnly {
		query = queryListUnreadForUser
	}

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	notifications := []Notification{}

	for rows.Next() {
		var n Notification
		var dataJSON []byte

		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Kind,
			&n.Title,
			&n.Message,
			&n.RelatedRunID,
			&dataJSON,
			&n.Read,
			&n.AutoDismissMS,
			&n.CreatedAt,
		)

		if err != nil {
			return nil, err
		}

		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				n.Data = nil // ignore malformed JSON
			}
		}

		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, queryUnreadCount, userID).Scan(&count)
	return count, err
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	tag, err := s.db.Exec(ctx, queryMarkRead, notificationID, userID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, queryMarkAllRead, userID)
	return err
}

func (s *Service) Remove(ctx context.Context, userID, notificationID string) error {
	tag, err := s.db.Exec(ctx, queryDelete, notificationID, userID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Service) ClearAll(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, queryDeleteAll, userID)
	return err
}
