package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/apperr"
	"github.com/pairchat/dm-core/internal/identity"
	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/pkg/metrics"
)

// Conversation hash field names. Stable for interoperability with
// pre-existing data.
const (
	fieldParticipant1 = "participant1"
	fieldParticipant2 = "participant2"
)

// EnsureConversation lazily creates the conversation between two users and
// indexes it under both participants' conversation sets. Safe to call on
// every send; when the conversation already exists this is a no-op beyond the
// existence check. Returns the conversation id and whether it was created.
func (s *Store) EnsureConversation(ctx context.Context, senderID, receiverID string) (string, bool, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("ensure_conversation", time.Since(start).Seconds()) }()

	conversationID := identity.ConversationID(senderID, receiverID)

	exists, err := s.rdb.Exists(ctx, conversationID).Result()
	if err != nil {
		return "", false, apperr.TransientStore("failed to check conversation", err)
	}
	if exists > 0 {
		return conversationID, false, nil
	}

	err = s.rdb.HSet(ctx, conversationID, map[string]interface{}{
		fieldParticipant1: senderID,
		fieldParticipant2: receiverID,
	}).Err()
	if err != nil {
		return "", false, apperr.TransientStore("failed to create conversation", err)
	}

	for _, userID := range []string{senderID, receiverID} {
		if err := s.rdb.SAdd(ctx, identity.UserConversationsKey(userID), conversationID).Err(); err != nil {
			return "", false, apperr.TransientStore("failed to index conversation", err)
		}
	}

	return conversationID, true, nil
}

// GetConversation fetches a conversation record.
func (s *Store) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("get_conversation", time.Since(start).Seconds()) }()

	fields, err := s.rdb.HGetAll(ctx, conversationID).Result()
	if err != nil {
		return nil, apperr.TransientStore("failed to read conversation", err)
	}
	if len(fields) == 0 {
		return nil, apperr.NotFound("conversation not found")
	}
	conv, err := parseConversation(conversationID, fields)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// ListConversations returns every conversation a user participates in. The
// set gives the ids; the records are fetched in one pipelined round trip.
func (s *Store) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("list_conversations", time.Since(start).Seconds()) }()

	ids, err := s.rdb.SMembers(ctx, identity.UserConversationsKey(userID)).Result()
	if err != nil {
		return nil, apperr.TransientStore("failed to read conversation set", err)
	}
	if len(ids) == 0 {
		return []model.Conversation{}, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperr.TransientStore("failed to fetch conversations", err)
	}

	conversations := make([]model.Conversation, 0, len(ids))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		conv, err := parseConversation(ids[i], fields)
		if err != nil {
			s.logger.Warn("skipping malformed conversation record",
				zap.String("conversation_id", ids[i]), zap.Error(err))
			continue
		}
		conversations = append(conversations, *conv)
	}

	return conversations, nil
}

func parseConversation(id string, fields map[string]string) (*model.Conversation, error) {
	p1, p2 := fields[fieldParticipant1], fields[fieldParticipant2]
	if p1 == "" || p2 == "" {
		return nil, apperr.TransientStore("conversation record missing participants", nil)
	}
	return &model.Conversation{ID: id, Participant1: p1, Participant2: p2}, nil
}
