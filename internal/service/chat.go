// Package service provides the chat core's business logic.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/apperr"
	"github.com/pairchat/dm-core/internal/identity"
	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/internal/store"
	"github.com/pairchat/dm-core/pkg/logger"
	"github.com/pairchat/dm-core/pkg/metrics"
)

// EventNotifier announces message-lifecycle changes to live subscribers.
// Implementations are best-effort and never return errors to the caller.
type EventNotifier interface {
	MessageCreated(ctx context.Context, userA, userB string, msg *model.Message)
	MessageEdited(ctx context.Context, userA, userB, messageID, content string)
	MessageDeleted(ctx context.Context, userA, userB, messageID string)
}

// ChatService orchestrates send, history, edit and delete across the store
// and the realtime notifier.
type ChatService struct {
	store    *store.Store
	notifier EventNotifier
	logger   *logger.Logger
}

// NewChatService creates a new chat service.
func NewChatService(s *store.Store, notifier EventNotifier, log *logger.Logger) *ChatService {
	return &ChatService{store: s, notifier: notifier, logger: log}
}

// Send persists a new message and announces it. The conversation between the
// pair is created lazily on first contact.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID, content string, msgType model.MessageType) (*model.SendMessageResponse, error) {
	if senderID == "" || receiverID == "" {
		return nil, apperr.InvalidInput("sender and receiver ids are required")
	}
	if content == "" {
		return nil, apperr.InvalidInput("content cannot be empty")
	}
	if !msgType.Valid() {
		return nil, apperr.InvalidInput("message type must be text or image")
	}

	conversationID, created, err := s.store.EnsureConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.ConversationsTotal.Inc()
		s.logger.Info("conversation created",
			zap.String("conversation_id", conversationID))
	}

	msg, err := s.store.CreateMessage(ctx, conversationID, senderID, content, msgType)
	if err != nil {
		return nil, err
	}
	metrics.MessagesTotal.WithLabelValues(string(msgType)).Inc()

	s.notifier.MessageCreated(ctx, senderID, receiverID, msg)

	return &model.SendMessageResponse{
		ConversationID: conversationID,
		Message:        msg,
	}, nil
}

// History returns the ordered log between two users. Requiring both ids as
// explicit inputs is the read-side access control: the handler always passes
// the authenticated caller as one of them.
func (s *ChatService) History(ctx context.Context, userA, userB string) (*model.HistoryResponse, error) {
	if userA == "" || userB == "" {
		return nil, apperr.InvalidInput("both participant ids are required")
	}

	messages, err := s.store.History(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	return &model.HistoryResponse{
		ConversationID: identity.ConversationID(userA, userB),
		Messages:       messages,
	}, nil
}

// Edit mutates a message's content. Only the original sender may edit, and
// only the content changes; ordering is untouched.
func (s *ChatService) Edit(ctx context.Context, messageID, editorID, peerID, newContent string) (*model.Message, error) {
	if messageID == "" || editorID == "" || peerID == "" {
		return nil, apperr.InvalidInput("message, editor and peer ids are required")
	}
	if newContent == "" {
		return nil, apperr.InvalidInput("content cannot be empty")
	}

	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := assertOwner(msg, editorID); err != nil {
		return nil, err
	}

	if err := s.store.UpdateContent(ctx, messageID, newContent); err != nil {
		return nil, err
	}
	metrics.MessageEditsTotal.Inc()

	s.notifier.MessageEdited(ctx, editorID, peerID, messageID, newContent)

	msg.Content = newContent
	return msg, nil
}

// Delete fully removes a message and its index entry. Only the original
// sender may delete.
func (s *ChatService) Delete(ctx context.Context, messageID, requesterID, peerID string) error {
	if messageID == "" || requesterID == "" || peerID == "" {
		return apperr.InvalidInput("message, requester and peer ids are required")
	}

	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if err := assertOwner(msg, requesterID); err != nil {
		return err
	}

	conversationID := identity.ConversationID(requesterID, peerID)
	if err := s.store.DeleteMessage(ctx, conversationID, messageID); err != nil {
		return err
	}
	metrics.MessageDeletesTotal.Inc()

	s.notifier.MessageDeleted(ctx, requesterID, peerID, messageID)

	return nil
}
