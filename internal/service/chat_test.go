package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pairchat/dm-core/internal/apperr"
	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/internal/store"
	"github.com/pairchat/dm-core/pkg/logger"
)

type notifierCall struct {
	kind      model.EventKind
	userA     string
	userB     string
	messageID string
	content   string
}

// spyNotifier records notifications instead of publishing them.
type spyNotifier struct {
	calls []notifierCall
}

func (n *spyNotifier) MessageCreated(ctx context.Context, userA, userB string, msg *model.Message) {
	n.calls = append(n.calls, notifierCall{
		kind: model.EventMessageCreated, userA: userA, userB: userB,
		messageID: msg.ID, content: msg.Content,
	})
}

func (n *spyNotifier) MessageEdited(ctx context.Context, userA, userB, messageID, content string) {
	n.calls = append(n.calls, notifierCall{
		kind: model.EventMessageEdited, userA: userA, userB: userB,
		messageID: messageID, content: content,
	})
}

func (n *spyNotifier) MessageDeleted(ctx context.Context, userA, userB, messageID string) {
	n.calls = append(n.calls, notifierCall{
		kind: model.EventMessageDeleted, userA: userA, userB: userB, messageID: messageID,
	})
}

func newTestService(t *testing.T) (*ChatService, *spyNotifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	spy := &spyNotifier{}
	return NewChatService(store.New(rdb, logger.NewNop()), spy, logger.NewNop()), spy
}

func TestChatService_Scenario(t *testing.T) {
	req := require.New(t)
	svc, spy := newTestService(t)
	ctx := context.Background()

	// u1 sends "hi" to u2
	sent, err := svc.Send(ctx, "u1", "u2", "hi", model.MessageTypeText)
	req.NoError(err)
	req.Equal("conversation:u1:u2", sent.ConversationID)

	hist, err := svc.History(ctx, "u1", "u2")
	req.NoError(err)
	req.Len(hist.Messages, 1)
	req.Equal("u1", hist.Messages[0].SenderID)
	req.Equal("hi", hist.Messages[0].Content)
	req.Equal(model.MessageTypeText, hist.Messages[0].Type)

	msgID := hist.Messages[0].ID
	originalTS := hist.Messages[0].Timestamp

	// u2 attempts to edit it
	_, err = svc.Edit(ctx, msgID, "u2", "u1", "hijacked")
	req.True(apperr.IsKind(err, apperr.KindForbidden))

	// u1 edits the content
	edited, err := svc.Edit(ctx, msgID, "u1", "u2", "hi there")
	req.NoError(err)
	req.Equal("hi there", edited.Content)

	hist, err = svc.History(ctx, "u1", "u2")
	req.NoError(err)
	req.Equal("hi there", hist.Messages[0].Content)
	req.Equal(originalTS, hist.Messages[0].Timestamp)

	// u1 deletes it
	req.NoError(svc.Delete(ctx, msgID, "u1", "u2"))

	hist, err = svc.History(ctx, "u1", "u2")
	req.NoError(err)
	req.Empty(hist.Messages)

	// One event per state change, on the shared channel derivation
	req.Len(spy.calls, 3)
	req.Equal(model.EventMessageCreated, spy.calls[0].kind)
	req.Equal(model.EventMessageEdited, spy.calls[1].kind)
	req.Equal(model.EventMessageDeleted, spy.calls[2].kind)
}

func TestChatService_Send_Validation(t *testing.T) {
	req := require.New(t)
	svc, spy := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name             string
		sender, receiver string
		content          string
		msgType          model.MessageType
	}{
		{"empty sender", "", "u2", "hi", model.MessageTypeText},
		{"empty receiver", "u1", "", "hi", model.MessageTypeText},
		{"empty content", "u1", "u2", "", model.MessageTypeText},
		{"bad type", "u1", "u2", "hi", model.MessageType("video")},
	}
	for _, tc := range cases {
		_, err := svc.Send(ctx, tc.sender, tc.receiver, tc.content, tc.msgType)
		req.True(apperr.IsKind(err, apperr.KindInvalidInput), tc.name)
	}
	req.Empty(spy.calls)
}

func TestChatService_Edit_NotFound(t *testing.T) {
	req := require.New(t)
	svc, spy := newTestService(t)

	_, err := svc.Edit(context.Background(), "message:1:missing", "u1", "u2", "x")
	req.True(apperr.IsKind(err, apperr.KindNotFound))
	req.Empty(spy.calls)
}

func TestChatService_Delete_NonSenderForbidden(t *testing.T) {
	req := require.New(t)
	svc, spy := newTestService(t)
	ctx := context.Background()

	sent, err := svc.Send(ctx, "u1", "u2", "hi", model.MessageTypeText)
	req.NoError(err)

	// When the receiver tries to delete the sender's message
	err = svc.Delete(ctx, sent.Message.ID, "u2", "u1")
	req.True(apperr.IsKind(err, apperr.KindForbidden))

	// Then the record is untouched
	hist, err := svc.History(ctx, "u1", "u2")
	req.NoError(err)
	req.Len(hist.Messages, 1)

	// And no delete event was announced
	req.Len(spy.calls, 1)
	req.Equal(model.EventMessageCreated, spy.calls[0].kind)
}

func TestChatService_SendTwice_SingleConversation(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Send(ctx, "u1", "u2", "one", model.MessageTypeText)
	req.NoError(err)
	second, err := svc.Send(ctx, "u2", "u1", "two", model.MessageTypeText)
	req.NoError(err)

	req.Equal(first.ConversationID, second.ConversationID)

	convs, err := svc.ListConversations(ctx, "u1")
	req.NoError(err)
	req.Len(convs.Conversations, 1)

	convs, err = svc.ListConversations(ctx, "u2")
	req.NoError(err)
	req.Len(convs.Conversations, 1)
}

func TestChatService_ImageMessage(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t)
	ctx := context.Background()

	sent, err := svc.Send(ctx, "u1", "u2", "https://cdn.example/pic.png", model.MessageTypeImage)
	req.NoError(err)
	req.Equal(model.MessageTypeImage, sent.Message.Type)

	hist, err := svc.History(ctx, "u2", "u1")
	req.NoError(err)
	req.Equal(model.MessageTypeImage, hist.Messages[0].Type)
	req.Equal("https://cdn.example/pic.png", hist.Messages[0].Content)
}

func TestChatService_EnsureUser_GravatarFiltered(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.EnsureUser(ctx, model.User{
		ID: "u1", Email: "a@b.c", Name: "Alice", Image: "https://gravatar.com/avatar/x",
	})
	req.NoError(err)

	user, err := svc.store.GetUser(ctx, "u1")
	req.NoError(err)
	req.Empty(user.Image)
}
