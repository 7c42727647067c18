package gupshup

import (
	"encoding/json"
	"fmt"
)

// EventType is the top-level type of a callback posted to the app's callback URL.
type EventType string

const (
	EventMessage      EventType = "message"
	EventMessageEvent EventType = "message-event"
	EventUserEvent    EventType = "user-event"
)

// MessageStatus is the status carried by a message-event callback.
type MessageStatus string

const (
	StatusEnqueued  MessageStatus = "enqueued"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
	StatusDeleted   MessageStatus = "deleted"
)

// Event is a v2 callback envelope.
type Event struct {
	App       string          `json:"app"`
	Timestamp int64           `json:"timestamp"`
	Version   int             `json:"version"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

// InboundMessage is the payload of a "message" callback.
type InboundMessage struct {
	ID      string          `json:"id"`
	Source  string          `json:"source"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Sender  struct {
		Phone       string `json:"phone"`
		Name        string `json:"name"`
		CountryCode string `json:"country_code"`
		DialCode    string `json:"dial_code"`
	} `json:"sender"`
}

// Text returns the body of a text message, or "" for other types.
func (m InboundMessage) Text() string {
	if m.Type != "text" {
		return ""
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(m.Payload, &body); err != nil {
		return ""
	}
	return body.Text
}

// MessageEvent is the payload of a "message-event" callback.
type MessageEvent struct {
	ID          string          `json:"id"`
	GsID        string          `json:"gsId"`
	Type        MessageStatus   `json:"type"`
	Destination string          `json:"destination"`
	Payload     json.RawMessage `json:"payload"`
}

// MessageID returns the id returned by SendMessage for the message this event refers
// to. After enqueueing the provider moves that id to gsId.
func (e MessageEvent) MessageID() string {
	if e.GsID != "" {
		return e.GsID
	}
	return e.ID
}

func (e Event) InboundMessage() (*InboundMessage, error) {
	if e.Type != EventMessage {
		return nil, fmt.Errorf("gupshup: event type %q is not %q", e.Type, EventMessage)
	}
	var msg InboundMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, fmt.Errorf("gupshup: decode inbound message: %w", err)
	}
	return &msg, nil
}

func (e Event) MessageEvent() (*MessageEvent, error) {
	if e.Type != EventMessageEvent {
		return nil, fmt.Errorf("gupshup: event type %q is not %q", e.Type, EventMessageEvent)
	}
	var ev MessageEvent
	if err := json.Unmarshal(e.Payload, &ev); err != nil {
		return nil, fmt.Errorf("gupshup: decode message event: %w", err)
	}
	return &ev, nil
}
