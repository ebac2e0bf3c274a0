package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/pixelpress/server/internal/errors"
	"codeberg.org/pixelpress/server/internal/logger"
)

// creates a new webSocket client connection
func NewClient(id, userID, ipAddress string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:                id,
		UserID:            userID,
		IPAddress:         ipAddress,
		conn:              conn,
		hub:               hub,
		send:              make(chan []byte, 256),
		closed:            false,
		messageTimestamps: make([]time.Time, 0, maxMessagesPerSecond),
	}
}

// reads messages from the webSocket connection to the hub for processing
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error",
					"client_id", c.ID,
					"user_id", c.UserID,
					"error", err,
				)
			}

			break
		}

		if !c.checkMessageRateLimit() {
			c.SendError("too_many_requests", "too many messages. maximum 5 per second.", "")
			continue
		}

		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.SendError("bad_request", "invalid message format", err.Error())
			continue
		}

		// identity always comes from the connection, never the payload
		msg.ClientID = c.ID
		msg.UserID = c.UserID
		msg.Timestamp = time.Now()

		c.hub.Inbound <- &msg
	}
}

// writes messages from the hub to the webSocket connection for sending to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sends a message to the client
func (c *Client) Send(msg *Message) (err error) {
	// recover from panic if channel is closed
	defer func() {
		if r := recover(); r != nil {
			err = ErrConnectionClosed
		}
	}()

	c.mu.RLock()

	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}

	c.mu.RUnlock()

	messageBytes, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		return marshalErr
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		// slow consumer; it resyncs with queue_state on reconnect
		c.Close()
		return ErrConnectionClosed
	}
}

// sends an error message to the client
func (c *Client) SendError(code, message, details string) {
	errorMsg, err := NewMessage(TypeError, c.UserID, errors.ErrorResponse{
		Error:   code,
		Message: message,
		Details: errors.SanitizeDetails(details),
	})
	if err != nil {
		logger.ErrorErr(err, "failed to create error message",
			"client_id", c.ID,
			"error_code", code,
		)
		return
	}

	c.Send(errorMsg) //nolint:errcheck,gosec // G104: best effort error notification
}

// closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// checks if the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}

// checks if the client can send another message this second
func (c *Client) checkMessageRateLimit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	oneSecondAgo := now.Add(-1 * time.Second)

	// remove timestamps older than 1 second
	validTimestamps := make([]time.Time, 0, maxMessagesPerSecond)

	for _, ts := range c.messageTimestamps {
		if ts.After(oneSecondAgo) {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	c.messageTimestamps = validTimestamps

	if len(c.messageTimestamps) >= maxMessagesPerSecond {
		return false
	}

	c.messageTimestamps = append(c.messageTimestamps, now)
	return true
}
