package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/pkg/logger"
)

type recordedEvent struct {
	channel string
	kind    model.EventKind
	payload []byte
}

// fakeTransport records publishes and optionally fails them.
type fakeTransport struct {
	events  []recordedEvent
	failure error
}

func (f *fakeTransport) Publish(ctx context.Context, channel string, event model.EventKind, payload []byte) error {
	if f.failure != nil {
		return f.failure
	}
	f.events = append(f.events, recordedEvent{channel: channel, kind: event, payload: payload})
	return nil
}

func (f *fakeTransport) Subscribe(ctx context.Context, channel string) (<-chan model.Event, func(), error) {
	ch := make(chan model.Event)
	return ch, func() { close(ch) }, nil
}

func TestNotifier_MessageCreated_PayloadAndChannel(t *testing.T) {
	req := require.New(t)
	ft := &fakeTransport{}
	n := NewNotifier(ft, logger.NewNop())

	msg := &model.Message{
		ID:        "message:1000:abc",
		SenderID:  "u2",
		Content:   "hi",
		Timestamp: 1000,
		Type:      model.MessageTypeText,
	}

	n.MessageCreated(context.Background(), "u2", "u1", msg)

	req.Len(ft.events, 1)
	req.Equal("u1__u2", ft.events[0].channel)
	req.Equal(model.EventMessageCreated, ft.events[0].kind)

	var e model.MessageCreatedEvent
	req.NoError(json.Unmarshal(ft.events[0].payload, &e))
	req.Equal("u2", e.SenderID)
	req.Equal("hi", e.Content)
	req.Equal(int64(1000), e.Timestamp)
	req.Equal(model.MessageTypeText, e.Type)
}

func TestNotifier_ChannelCommutative(t *testing.T) {
	req := require.New(t)
	ft := &fakeTransport{}
	n := NewNotifier(ft, logger.NewNop())
	ctx := context.Background()

	n.MessageDeleted(ctx, "u1", "u2", "message:1:a")
	n.MessageDeleted(ctx, "u2", "u1", "message:1:a")

	req.Len(ft.events, 2)
	req.Equal(ft.events[0].channel, ft.events[1].channel)
}

func TestNotifier_MessageEdited_Payload(t *testing.T) {
	req := require.New(t)
	ft := &fakeTransport{}
	n := NewNotifier(ft, logger.NewNop())

	n.MessageEdited(context.Background(), "u1", "u2", "message:1000:abc", "hi there")

	req.Len(ft.events, 1)
	req.Equal(model.EventMessageEdited, ft.events[0].kind)

	var e model.MessageEditedEvent
	req.NoError(json.Unmarshal(ft.events[0].payload, &e))
	req.Equal("message:1000:abc", e.MessageID)
	req.Equal("hi there", e.Content)
}

func TestNotifier_PublishFailureIsSwallowed(t *testing.T) {
	ft := &fakeTransport{failure: errors.New("transport down")}
	n := NewNotifier(ft, logger.NewNop())

	// Must not panic or surface the error; the store write already succeeded.
	n.MessageCreated(context.Background(), "u1", "u2", &model.Message{
		SenderID: "u1", Content: "x", Timestamp: 1, Type: model.MessageTypeText,
	})
	require.Empty(t, ft.events)
}
