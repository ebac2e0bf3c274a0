package notifications

import "codeberg.org/pixelpress/server/internal/notifications"

type ListResponse struct {
	Notifications []notifications.Notification `json:"notifications"`
	UnreadCount   int                          `json:"unread_count"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}
