package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/apperr"
	"github.com/pairchat/dm-core/internal/model"
)

// EnsureUser registers a first-time user's profile from the identity
// provider's claims. Gravatar placeholder images are stored as empty strings
// so clients fall back to their own default avatar.
func (s *ChatService) EnsureUser(ctx context.Context, user model.User) error {
	if user.ID == "" {
		return apperr.InvalidInput("user id is required")
	}

	if strings.Contains(user.Image, "gravatar") {
		user.Image = ""
	}

	created, err := s.store.EnsureUser(ctx, user)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("user registered", zap.String("user_id", user.ID))
	}
	return nil
}

// ListConversations returns every conversation the user participates in.
func (s *ChatService) ListConversations(ctx context.Context, userID string) (*model.ListConversationsResponse, error) {
	if userID == "" {
		return nil, apperr.InvalidInput("user id is required")
	}

	conversations, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.ListConversationsResponse{Conversations: conversations}, nil
}
