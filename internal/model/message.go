// Package model defines data structures for the chat core.
package model

// MessageType distinguishes text from image messages.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	return t == MessageTypeText || t == MessageTypeImage
}

// Message is a single direct message. A message belongs to exactly one
// conversation, fixed at creation time, and only its sender may mutate it.
type Message struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"senderId"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"` // creation time, epoch milliseconds
	Type      MessageType `json:"messageType"`
}

// SendMessageRequest is the request to send a new message.
type SendMessageRequest struct {
	ReceiverID  string      `json:"receiverId"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
}

// SendMessageResponse is the response after sending a message.
type SendMessageResponse struct {
	ConversationID string   `json:"conversationId"`
	Message        *Message `json:"message"`
}

// EditMessageRequest is the request to edit an existing message.
type EditMessageRequest struct {
	PeerID  string `json:"peerId"`
	Content string `json:"content"`
}

// DeleteMessageRequest carries the peer id needed to derive the conversation
// the message belongs to.
type DeleteMessageRequest struct {
	PeerID string `json:"peerId"`
}

// HistoryResponse is the response for fetching a conversation log.
type HistoryResponse struct {
	ConversationID string    `json:"conversationId"`
	Messages       []Message `json:"messages"`
}
