package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog() *MemoryLog {
	log := NewMemoryLog()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0

	log.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	return log
}

func TestMemoryLog_NotifyAndList(t *testing.T) {
	ctx := context.Background()
	log := newTestLog()

	firstID, err := log.Notify(ctx, "user-1", &CreateRequest{Kind: KindInfo, Title: "Started", Message: "2 images queued", RelatedRunID: "run-1"})
	require.NoError(t, err)

	_, err = log.Notify(ctx, "user-1", &CreateRequest{
		Kind:        KindSuccess,
		Title:       "Done",
		Message:     "1 image generated",
		Data:        map[string]any{"imageCount": 1},
		AutoDismiss: 5 * time.Second,
	})
	require.NoError(t, err)

	_, err = log.Notify(ctx, "user-2", &CreateRequest{Kind: KindError, Title: "Other user"})
	require.NoError(t, err)

	list, err := log.List(ctx, "user-1", 50, false)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Done", list[0].Title, "newest first")
	assert.Equal(t, 5000, *list[0].AutoDismissMS)
	assert.Equal(t, firstID, list[1].ID)
	assert.Equal(t, "run-1", list[1].RelatedRunID)
	assert.Nil(t, list[1].AutoDismissMS)

	limited, err := log.List(ctx, "user-1", 1, false)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMemoryLog_ReadFlags(t *testing.T) {
	ctx := context.Background()
	log := newTestLog()

	a, _ := log.Notify(ctx, "u", &CreateRequest{Kind: KindInfo, Title: "a"}) //nolint:errcheck // memory log never fails
	_, _ = log.Notify(ctx, "u", &CreateRequest{Kind: KindInfo, Title: "b"}) //nolint:errcheck // memory log never fails

	count, err := log.UnreadCount(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, log.MarkRead(ctx, "u", a))

	unread, err := log.List(ctx, "u", 10, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "b", unread[0].Title)

	require.NoError(t, log.MarkAllRead(ctx, "u"))

	count, err = log.UnreadCount(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.ErrorIs(t, log.MarkRead(ctx, "u", "missing"), ErrNotFound)
	assert.ErrorIs(t, log.MarkRead(ctx, "someone-else", a), ErrNotFound)
}

func TestMemoryLog_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	log := newTestLog()

	a, _ := log.Notify(ctx, "u", &CreateRequest{Kind: KindInfo, Title: "a"}) //nolint:errcheck // memory log never fails
	_, _ = log.Notify(ctx, "u", &CreateRequest{Kind: KindInfo, Title: "b"}) //nolint:errcheck // memory log never fails

	require.NoError(t, log.Remove(ctx, "u", a))
	assert.ErrorIs(t, log.Remove(ctx, "u", a), ErrNotFound)

	list, err := log.List(ctx, "u", 10, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Title)

	require.NoError(t, log.ClearAll(ctx, "u"))

	list, err = log.List(ctx, "u", 10, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type recordingPublisher struct {
	mu    sync.Mutex
	users []string
	items []*Notification
}

func (p *recordingPublisher) PublishNotification(userID string, n *Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.users = append(p.users, userID)
	p.items = append(p.items, n)
}

func TestPublishingLog_ForwardsStoredNotifications(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	log := WithPublisher(newTestLog(), pub)

	id, err := log.Notify(ctx, "u", &CreateRequest{Kind: KindWarning, Title: "Cancelled"})
	require.NoError(t, err)

	require.Len(t, pub.items, 1)
	assert.Equal(t, "u", pub.users[0])
	assert.Equal(t, id, pub.items[0].ID)
	assert.Equal(t, KindWarning, pub.items[0].Kind)

	count, err := log.UnreadCount(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindSuccess.Valid())
	assert.True(t, KindInfo.Valid())
	assert.False(t, Kind("fatal").Valid())
}
