package notify

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/pairchat/dm-core/internal/model"
)

// View is a client-side, eventually consistent copy of one conversation's
// log. Realtime events are hints that patch the local state; whenever a patch
// cannot be applied the view marks itself stale, and the owner re-fetches
// history to reconcile. Safe for concurrent use.
type View struct {
	mu       sync.Mutex
	messages []model.Message
	stale    bool
}

// NewView returns an empty view.
func NewView() *View {
	return &View{messages: []model.Message{}}
}

// Resync replaces the local state with an authoritative history fetch.
func (v *View) Resync(messages []model.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append([]model.Message(nil), messages...)
	sortMessages(v.messages)
	v.stale = false
}

// Apply patches the local state from one event. Unknown kinds and undecodable
// payloads mark the view stale rather than corrupting it.
func (v *View) Apply(ev model.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Kind {
	case model.EventMessageCreated:
		var e model.MessageCreatedEvent
		if json.Unmarshal(ev.Payload, &e) != nil {
			v.stale = true
			return
		}
		// Created events carry no id, so the appended entry cannot be patched
		// by later edit/delete events until the next resync.
		v.messages = append(v.messages, model.Message{
			SenderID:  e.SenderID,
			Content:   e.Content,
			Timestamp: e.Timestamp,
			Type:      e.Type,
		})
		sortMessages(v.messages)

	case model.EventMessageEdited:
		var e model.MessageEditedEvent
		if json.Unmarshal(ev.Payload, &e) != nil {
			v.stale = true
			return
		}
		if i := v.index(e.MessageID); i >= 0 {
			v.messages[i].Content = e.Content
		} else {
			v.stale = true
		}

	case model.EventMessageDeleted:
		var e model.MessageDeletedEvent
		if json.Unmarshal(ev.Payload, &e) != nil {
			v.stale = true
			return
		}
		if i := v.index(e.MessageID); i >= 0 {
			v.messages = append(v.messages[:i], v.messages[i+1:]...)
		} else {
			v.stale = true
		}

	default:
		v.stale = true
	}
}

// Messages returns a copy of the current local state.
func (v *View) Messages() []model.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Message(nil), v.messages...)
}

// Stale reports whether a patch failed since the last resync, meaning the
// owner should re-fetch history.
func (v *View) Stale() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stale
}

func (v *View) index(messageID string) int {
	for i := range v.messages {
		if v.messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

func sortMessages(messages []model.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Timestamp != messages[j].Timestamp {
			return messages[i].Timestamp < messages[j].Timestamp
		}
		return messages[i].ID < messages[j].ID
	})
}
