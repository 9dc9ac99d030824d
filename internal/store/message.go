package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/apperr"
	"github.com/pairchat/dm-core/internal/identity"
	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/pkg/metrics"
)

// MessageKeyPrefix namespaces message hashes in the store.
const MessageKeyPrefix = "message:"

// Message hash field names. Stable for interoperability with pre-existing data.
const (
	fieldSenderID    = "senderId"
	fieldContent     = "content"
	fieldTimestamp   = "timestamp"
	fieldMessageType = "messageType"
)

// newMessageID builds a message key from the creation timestamp and a random
// disambiguator. The timestamp keeps ids monotonic enough for chronological
// ordering; the random suffix breaks ties at equal milliseconds.
func newMessageID(ts int64) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return MessageKeyPrefix + strconv.FormatInt(ts, 10) + ":" + random
}

// CreateMessage writes a message record and inserts it into the conversation
// index. The record write happens first so the index never points at a
// missing record under normal operation.
func (s *Store) CreateMessage(ctx context.Context, conversationID, senderID, content string, msgType model.MessageType) (*model.Message, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("create_message", time.Since(start).Seconds()) }()

	ts := time.Now().UnixMilli()
	msg := &model.Message{
		ID:        newMessageID(ts),
		SenderID:  senderID,
		Content:   content,
		Timestamp: ts,
		Type:      msgType,
	}

	err := s.rdb.HSet(ctx, msg.ID, map[string]interface{}{
		fieldSenderID:    msg.SenderID,
		fieldContent:     msg.Content,
		fieldTimestamp:   msg.Timestamp,
		fieldMessageType: string(msg.Type),
	}).Err()
	if err != nil {
		return nil, apperr.TransientStore("failed to write message", err)
	}

	err = s.rdb.ZAdd(ctx, identity.MessagesKey(conversationID), redis.Z{
		Score:  float64(msg.Timestamp),
		Member: msg.ID,
	}).Err()
	if err != nil {
		return nil, apperr.TransientStore("failed to index message", err)
	}

	return msg, nil
}

// GetMessage fetches a single message record.
func (s *Store) GetMessage(ctx context.Context, messageID string) (*model.Message, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("get_message", time.Since(start).Seconds()) }()

	fields, err := s.rdb.HGetAll(ctx, messageID).Result()
	if err != nil {
		return nil, apperr.TransientStore("failed to read message", err)
	}
	if len(fields) == 0 {
		return nil, apperr.NotFound("message not found")
	}

	msg, err := parseMessage(messageID, fields)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the full ordered log of a conversation, ascending by
// timestamp. Index entries are read first, then all records are fetched in
// one pipelined round trip. An index entry without a backing record means the
// record was deleted concurrently; it is skipped, not an error.
func (s *Store) History(ctx context.Context, userA, userB string) ([]model.Message, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("history", time.Since(start).Seconds()) }()

	conversationID := identity.ConversationID(userA, userB)

	messageIDs, err := s.rdb.ZRange(ctx, identity.MessagesKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, apperr.TransientStore("failed to read message index", err)
	}
	if len(messageIDs) == 0 {
		return []model.Message{}, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(messageIDs))
	for i, id := range messageIDs {
		cmds[i] = pipe.HGetAll(ctx, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperr.TransientStore("failed to fetch messages", err)
	}

	messages := make([]model.Message, 0, len(messageIDs))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			// Record gone between index read and fetch.
			continue
		}
		msg, err := parseMessage(messageIDs[i], fields)
		if err != nil {
			s.logger.Warn("skipping malformed message record",
				zap.String("message_id", messageIDs[i]), zap.Error(err))
			continue
		}
		messages = append(messages, *msg)
	}

	return messages, nil
}

// UpdateContent mutates only the content field of an existing message.
// Timestamp, sender and type are preserved, and the index is untouched since
// an edit never changes ordering.
func (s *Store) UpdateContent(ctx context.Context, messageID, content string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("update_content", time.Since(start).Seconds()) }()

	if err := s.rdb.HSet(ctx, messageID, fieldContent, content).Err(); err != nil {
		return apperr.TransientStore("failed to update message", err)
	}
	return nil
}

// DeleteMessage removes a message and its index entry. The index entry goes
// first so a concurrent reader never resolves an index entry to a record that
// is already gone; the reverse window (record present, index entry gone) only
// hides the message, which is the intended end state anyway.
func (s *Store) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("delete_message", time.Since(start).Seconds()) }()

	if err := s.rdb.ZRem(ctx, identity.MessagesKey(conversationID), messageID).Err(); err != nil {
		return apperr.TransientStore("failed to remove message from index", err)
	}
	if err := s.rdb.Del(ctx, messageID).Err(); err != nil {
		return apperr.TransientStore("failed to delete message", err)
	}
	return nil
}

// parseMessage validates a raw hash row against the record schema. Missing or
// malformed required fields never propagate as silently wrong data.
func parseMessage(id string, fields map[string]string) (*model.Message, error) {
	senderID, ok := fields[fieldSenderID]
	if !ok || senderID == "" {
		return nil, apperr.TransientStore("message record missing sender", nil)
	}
	rawTS, ok := fields[fieldTimestamp]
	if !ok {
		return nil, apperr.TransientStore("message record missing timestamp", nil)
	}
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return nil, apperr.TransientStore("message record has malformed timestamp", err)
	}
	msgType := model.MessageType(fields[fieldMessageType])
	if !msgType.Valid() {
		return nil, apperr.TransientStore("message record has unknown type", nil)
	}

	return &model.Message{
		ID:        id,
		SenderID:  senderID,
		Content:   fields[fieldContent],
		Timestamp: ts,
		Type:      msgType,
	}, nil
}
