package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// builds a message with a JSON-encoded payload; nil payload is omitted
func NewMessage(msgType, userID string, payload any) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		UserID:    userID,
		Timestamp: time.Now(),
	}

	if payload == nil {
		return msg, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}

	msg.Payload = data
	return msg, nil
}

// decodes the message payload into v
func (m *Message) UnmarshalPayload(v any) error {
	if len(m.Payload) == 0 {
		return ErrInvalidMessage
	}

	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return nil
}
