package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pairchat/dm-core/internal/apperr"
	"github.com/pairchat/dm-core/internal/identity"
	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/pkg/logger"
)

func newTestStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, logger.NewNop()), rdb
}

// seedMessage writes a message record and index entry directly, bypassing
// CreateMessage, so tests control the timestamp.
func seedMessage(t *testing.T, rdb *redis.Client, conversationID, senderID, content string, ts int64) string {
	t.Helper()
	ctx := context.Background()
	id := MessageKeyPrefix + strconv.FormatInt(ts, 10) + ":seed" + strconv.FormatInt(ts%1000, 10)
	require.NoError(t, rdb.HSet(ctx, id, map[string]interface{}{
		fieldSenderID:    senderID,
		fieldContent:     content,
		fieldTimestamp:   ts,
		fieldMessageType: string(model.MessageTypeText),
	}).Err())
	require.NoError(t, rdb.ZAdd(ctx, identity.MessagesKey(conversationID), redis.Z{
		Score:  float64(ts),
		Member: id,
	}).Err())
	return id
}

func TestCreateMessage_RoundTrip(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)
	ctx := context.Background()

	convID, _, err := s.EnsureConversation(ctx, "u1", "u2")
	req.NoError(err)

	// When a message is sent
	before := time.Now().UnixMilli()
	msg, err := s.CreateMessage(ctx, convID, "u1", "hi", model.MessageTypeText)
	req.NoError(err)
	after := time.Now().UnixMilli()

	// Then history returns it with identical fields
	history, err := s.History(ctx, "u2", "u1")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(msg.ID, history[0].ID)
	req.Equal("u1", history[0].SenderID)
	req.Equal("hi", history[0].Content)
	req.Equal(model.MessageTypeText, history[0].Type)
	req.GreaterOrEqual(history[0].Timestamp, before)
	req.LessOrEqual(history[0].Timestamp, after)
}

func TestHistory_OrderedByTimestamp(t *testing.T) {
	req := require.New(t)
	s, rdb := newTestStore(t)
	ctx := context.Background()

	convID := identity.ConversationID("u1", "u2")

	// Given messages written out of chronological order
	seedMessage(t, rdb, convID, "u1", "third", 3000)
	seedMessage(t, rdb, convID, "u2", "first", 1000)
	seedMessage(t, rdb, convID, "u1", "second", 2000)

	// Then history is ascending by timestamp
	history, err := s.History(ctx, "u1", "u2")
	req.NoError(err)
	req.Len(history, 3)
	req.Equal("first", history[0].Content)
	req.Equal("second", history[1].Content)
	req.Equal("third", history[2].Content)
}

func TestHistory_EmptyConversation(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)

	history, err := s.History(context.Background(), "u1", "u2")
	req.NoError(err)
	req.Empty(history)
	req.NotNil(history)
}

func TestHistory_SkipsOrphanIndexEntries(t *testing.T) {
	req := require.New(t)
	s, rdb := newTestStore(t)
	ctx := context.Background()

	convID := identity.ConversationID("u1", "u2")
	seedMessage(t, rdb, convID, "u1", "kept", 1000)

	// Given an index entry whose record was deleted concurrently
	req.NoError(rdb.ZAdd(ctx, identity.MessagesKey(convID), redis.Z{
		Score:  2000,
		Member: "message:2000:gone",
	}).Err())

	// Then the reader treats it as "message gone" and skips it
	history, err := s.History(ctx, "u1", "u2")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("kept", history[0].Content)
}

func TestHistory_SkipsMalformedRecords(t *testing.T) {
	req := require.New(t)
	s, rdb := newTestStore(t)
	ctx := context.Background()

	convID := identity.ConversationID("u1", "u2")
	seedMessage(t, rdb, convID, "u1", "good", 1000)

	// Given a record missing its sender field
	bad := "message:2000:bad"
	req.NoError(rdb.HSet(ctx, bad, fieldContent, "no sender").Err())
	req.NoError(rdb.ZAdd(ctx, identity.MessagesKey(convID), redis.Z{Score: 2000, Member: bad}).Err())

	history, err := s.History(ctx, "u1", "u2")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("good", history[0].Content)
}

func TestGetMessage_NotFound(t *testing.T) {
	req := require.New(t)
	s, _ := newTestStore(t)

	_, err := s.GetMessage(context.Background(), "message:1:missing")
	req.Error(err)
	req.True(apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateContent_PreservesOtherFields(t *testing.T) {
	req := require.New(t)
	s, rdb := newTestStore(t)
	ctx := context.Background()

	convID := identity.ConversationID("u1", "u2")
	id := seedMessage(t, rdb, convID, "u1", "hi", 1000)

	// When only the content is updated
	req.NoError(s.UpdateContent(ctx, id, "hi there"))

	// Then sender, timestamp and type are untouched
	msg, err := s.GetMessage(ctx, id)
	req.NoError(err)
	req.Equal("hi there", msg.Content)
	req.Equal("u1", msg.SenderID)
	req.Equal(int64(1000), msg.Timestamp)
	req.Equal(model.MessageTypeText, msg.Type)
}

func TestDeleteMessage_RemovesRecordAndIndexEntry(t *testing.T) {
	req := require.New(t)
	s, rdb := newTestStore(t)
	ctx := context.Background()

	convID := identity.ConversationID("u1", "u2")
	id := seedMessage(t, rdb, convID, "u1", "bye", 1000)

	req.NoError(s.DeleteMessage(ctx, convID, id))

	// Then the history no longer contains the id
	history, err := s.History(ctx, "u1", "u2")
	req.NoError(err)
	req.Empty(history)

	// And a direct lookup reports not found
	_, err = s.GetMessage(ctx, id)
	req.True(apperr.IsKind(err, apperr.KindNotFound))
}
