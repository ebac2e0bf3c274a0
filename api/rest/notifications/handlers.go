package notifications

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/errors"
	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/internal/notifications"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// ListHandler godoc
// @Summary List notifications
// @Description Newest first; pass unread=true to skip read entries
// @Tags notifications
// @Produce json
// @Param limit query int false "Max entries (default 50, max 100)"
// @Param unread query bool false "Only unread"
// @Success 200 {object} ListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/notifications [get]
// @Security BearerAuth
func ListHandler(log notifications.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		limit := defaultLimit
		if l := c.Query("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLimit {
				limit = parsed
			}
		}

		unreadOnly := c.Query("unread") == "true"

		notifs, err := log.List(c.Request.Context(), userID, limit, unreadOnly)
		if err != nil {
			errors.InternalError(c, "failed to fetch notifications", err)
			return
		}

		unreadCount, err := log.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			logger.ErrorErr(err, "failed to count unread notifications", "user_id", userID)
			unreadCount = 0
		}

		if notifs == nil {
			notifs = []notifications.Notification{}
		}

		c.JSON(http.StatusOK, ListResponse{
			Notifications: notifs,
			UnreadCount:   unreadCount,
		})
	}
}

// UnreadCountHandler godoc
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} UnreadCountResponse
// @Router /api/v1/notifications/unread-count [get]
// @Security BearerAuth
func UnreadCountHandler(log notifications.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		count, err := log.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to get unread count", err)
			return
		}

		c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
	}
}

// MarkReadHandler godoc
// @Summary Mark one notification read
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/notifications/{id}/read [put]
// @Security BearerAuth
func MarkReadHandler(log notifications.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		notificationID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		if err := log.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
			writeError(c, err, "failed to mark notification as read")
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// MarkAllReadHandler godoc
// @Summary Mark every notification read
// @Tags notifications
// @Success 204
// @Router /api/v1/notifications/read-all [put]
// @Security BearerAuth
func MarkAllReadHandler(log notifications.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		if err := log.MarkAllRead(c.Request.Context(), userID); err != nil {
			errors.InternalError(c, "failed to mark notifications as read", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// RemoveHandler godoc
// @Summary Dismiss one notification
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/notifications/{id} [delete]
// @Security BearerAuth
func RemoveHandler(log notifications.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		notificationID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		if err := log.Remove(c.Request.Context(), userID, notificationID); err != nil {
			writeError(c, err, "failed to remove notification")
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// ClearAllHandler godoc
// @Summary Dismiss every notification
// @Tags notifications
// @Success 204
// @Router /api/v1/notifications [delete]
// @Security BearerAuth
func ClearAllHandler(log notifications.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		if err := log.ClearAll(c.Request.Context(), userID); err != nil {
			errors.InternalError(c, "failed to clear notifications", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func writeError(c *gin.Context, err error, message string) {
	if stderrors.Is(err, notifications.ErrNotFound) {
		errors.NotFound(c, "notification")
		return
	}

	errors.InternalError(c, message, err)
}
