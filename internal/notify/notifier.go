package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/identity"
	"github.com/pairchat/dm-core/internal/model"
	"github.com/pairchat/dm-core/pkg/logger"
	"github.com/pairchat/dm-core/pkg/metrics"
)

// Notifier publishes message-lifecycle events to the channel shared by a pair
// of participants. Publish failures are swallowed after logging; the caller's
// mutation has already succeeded against the store.
type Notifier struct {
	transport Transport
	logger    *logger.Logger
}

// NewNotifier creates a notifier on the given transport.
func NewNotifier(transport Transport, log *logger.Logger) *Notifier {
	return &Notifier{transport: transport, logger: log}
}

// MessageCreated announces a new message to both participants' channel.
func (n *Notifier) MessageCreated(ctx context.Context, userA, userB string, msg *model.Message) {
	n.publish(ctx, userA, userB, model.EventMessageCreated, model.MessageCreatedEvent{
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		Type:      msg.Type,
	})
}

// MessageEdited announces an edited message.
func (n *Notifier) MessageEdited(ctx context.Context, userA, userB, messageID, content string) {
	n.publish(ctx, userA, userB, model.EventMessageEdited, model.MessageEditedEvent{
		MessageID: messageID,
		Content:   content,
	})
}

// MessageDeleted announces a deleted message.
func (n *Notifier) MessageDeleted(ctx context.Context, userA, userB, messageID string) {
	n.publish(ctx, userA, userB, model.EventMessageDeleted, model.MessageDeletedEvent{
		MessageID: messageID,
	})
}

func (n *Notifier) publish(ctx context.Context, userA, userB string, kind model.EventKind, payload interface{}) {
	channel := identity.Channel(userA, userB)

	data, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordPublish(string(kind), err)
		n.logger.Warn("failed to marshal event", zap.String("event", string(kind)), zap.Error(err))
		return
	}

	err = n.transport.Publish(ctx, channel, kind, data)
	metrics.RecordPublish(string(kind), err)
	if err != nil {
		n.logger.Warn("best-effort publish failed",
			zap.String("event", string(kind)),
			zap.String("channel", channel),
			zap.Error(err))
	}
}
