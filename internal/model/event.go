package model

import "encoding/json"

// EventKind names a message-lifecycle event on the realtime channel.
type EventKind string

const (
	EventMessageCreated EventKind = "messageCreated"
	EventMessageEdited  EventKind = "messageEdited"
	EventMessageDeleted EventKind = "messageDeleted"
)

// Event is a realtime notification as delivered to a subscriber. Delivery is
// best-effort; the store remains the source of truth.
type Event struct {
	Kind    EventKind       `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// MessageCreatedEvent carries the fields a subscriber needs to append the new
// message to its local view. The message id is intentionally absent; a view
// that needs ids reconciles by re-fetching the log.
type MessageCreatedEvent struct {
	SenderID  string      `json:"senderId"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
	Type      MessageType `json:"messageType"`
}

// MessageEditedEvent carries the edited message id and its new content.
type MessageEditedEvent struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

// MessageDeletedEvent carries the deleted message id.
type MessageDeletedEvent struct {
	MessageID string `json:"messageId"`
}
