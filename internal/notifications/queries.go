package notifications

const (
	queryCreate = `
		INSERT INTO notifications (user_id, kind, title, body, related_run_id, data, auto_dismiss_ms)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING id, created_at
	`

	queryListForUser = `
		SELECT id, user_id, kind, title, body, COALESCE(related_run_id, ''), data, read, auto_dismiss_ms, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	queryListUnreadForUser = `
		SELECT id, user_id, kind, title, body, COALESCE(related_run_id, ''), data, read, auto_dismiss_ms, created_at
		FROM notifications
		WHERE user_id = $1 AND read = false
		ORDER BY created_at DESC
		LIMIT $2
	`

	queryUnreadCount = `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false
	`

	queryMarkRead = `
		UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2
	`

	queryMarkAllRead = `
		UPDATE notifications SET read = true WHERE user_id = $1 AND read = false
	`

	queryDelete = `
		DELETE FROM notifications WHERE id = $1 AND user_id = $2
	`

	queryDeleteAll = `
		DELETE FROM notifications WHERE user_id = $1
	`
)
