// Package notify fans out message-lifecycle events to live subscribers.
//
// Delivery is at-most-once and best-effort: a failed publish is logged and
// counted, never retried, and never fails the mutation that triggered it. The
// store is the source of truth; a missed event is recovered by re-fetching
// history.
package notify

import (
	"context"

	"github.com/pairchat/dm-core/internal/model"
)

// Transport delivers fire-and-forget events to named channels.
type Transport interface {
	// Publish sends one event to a channel.
	Publish(ctx context.Context, channel string, event model.EventKind, payload []byte) error

	// Subscribe returns a stream of events for a channel plus an unsubscribe
	// function. After unsubscribe the stream delivers nothing further; it may
	// or may not be closed.
	Subscribe(ctx context.Context, channel string) (<-chan model.Event, func(), error)
}
