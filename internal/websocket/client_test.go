package websocket

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/queue"
)

func TestMessageRateLimit(t *testing.T) {
	client := &Client{
		messageTimestamps: make([]time.Time, 0, maxMessagesPerSecond),
	}

	for i := 0; i < maxMessagesPerSecond; i++ {
		assert.True(t, client.checkMessageRateLimit(), "message %d should be allowed", i+1)
	}

	assert.False(t, client.checkMessageRateLimit())
	assert.Len(t, client.messageTimestamps, maxMessagesPerSecond)
}

func TestMessageRateLimitWindowExpiration(t *testing.T) {
	client := &Client{}

	twoSecondsAgo := time.Now().Add(-2 * time.Second)
	for i := 0; i < maxMessagesPerSecond; i++ {
		client.messageTimestamps = append(client.messageTimestamps, twoSecondsAgo)
	}

	assert.True(t, client.checkMessageRateLimit())
	assert.Len(t, client.messageTimestamps, 1)
}

func TestSendAfterClose(t *testing.T) {
	client := &Client{send: make(chan []byte, 1)}
	client.Close()
	client.Close()

	msg, err := NewMessage(TypePong, "user-1", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, client.Send(msg), ErrConnectionClosed)
}

func TestSendClosesSlowClient(t *testing.T) {
	client := &Client{send: make(chan []byte, 1)}

	msg, err := NewMessage(TypePong, "user-1", nil)
	require.NoError(t, err)

	require.NoError(t, client.Send(msg))
	assert.ErrorIs(t, client.Send(msg), ErrConnectionClosed)
	assert.True(t, client.IsClosed())
}

func TestUnmarshalPayload(t *testing.T) {
	msg, err := NewMessage(TypeServerShutdown, "", ServerShutdownPayload{Reason: "restart"})
	require.NoError(t, err)

	var payload ServerShutdownPayload
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "restart", payload.Reason)

	empty, err := NewMessage(TypePing, "", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, empty.UnmarshalPayload(&payload), ErrInvalidMessage)
}

type staticSource struct {
	views []*queue.View
}

func (s staticSource) Snapshots(_ context.Context, _ string) ([]*queue.View, error) {
	return s.views, nil
}

func TestSendQueueState(t *testing.T) {
	client := &Client{ID: "c1", UserID: "user-1", send: make(chan []byte, 4)}
	source := staticSource{views: []*queue.View{
		{AccountID: "user-1", TemplateType: imagegen.TemplateBlog, Items: []queue.Item{}},
		{AccountID: "user-1", TemplateType: imagegen.TemplateInfographic, Items: []queue.Item{}},
	}}

	require.NoError(t, SendQueueState(client, source))

	msg := receive(t, client)
	assert.Equal(t, TypeQueueState, msg.Type)

	var payload QueueStatePayload
	require.NoError(t, msg.UnmarshalPayload(&payload))
	require.Len(t, payload.Queues, 2)
	assert.Equal(t, imagegen.TemplateInfographic, payload.Queues[1].TemplateType)
}

func TestOriginChecker(t *testing.T) {
	dev := NewOriginChecker("development", nil)
	prod := NewOriginChecker("production", []string{"https://app.pixelpress.io"})
	unconfigured := NewOriginChecker("production", nil)

	req := httptest.NewRequest("GET", "/api/v1/ws", nil)
	assert.True(t, dev(req))
	assert.False(t, prod(req))

	req.Header.Set("Origin", "https://app.pixelpress.io")
	assert.True(t, prod(req))
	assert.False(t, unconfigured(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, prod(req))
}
