package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/identity"
	"github.com/pairchat/dm-core/internal/middleware"
	"github.com/pairchat/dm-core/internal/notify"
	"github.com/pairchat/dm-core/internal/service"
	"github.com/pairchat/dm-core/pkg/logger"
	"github.com/pairchat/dm-core/pkg/metrics"
)

// StreamHandler serves a conversation as a live SSE stream: the full history
// first, then realtime events as they arrive. Events are hints; a client that
// suspects it missed one re-fetches history.
type StreamHandler struct {
	chatService *service.ChatService
	transport   notify.Transport
	logger      *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(svc *service.ChatService, transport notify.Transport, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		chatService: svc,
		transport:   transport,
		logger:      log,
	}
}

// replayCompleteEvent marks the end of the history replay.
type replayCompleteEvent struct {
	ConversationID string `json:"conversationId"`
	MessageCount   int    `json:"messageCount"`
}

// heartbeatEvent keeps idle connections alive.
type heartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// Stream handles GET /api/v1/conversations/{peerID}/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	peerID := chi.URLParam(r, "peerID")

	if err := middleware.ValidateUserID(peerID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Subscribe before the replay so events racing the history fetch are
	// delivered rather than lost.
	channel := identity.Channel(userID, peerID)
	events, unsubscribe, err := h.transport.Subscribe(ctx, channel)
	if err != nil {
		h.logger.Error("failed to subscribe", zap.String("channel", channel), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "live updates unavailable")
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	done := ctx.Done()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"channel": channel,
	})

	// Replay the authoritative log.
	hist, err := h.chatService.History(ctx, userID, peerID)
	if err != nil {
		h.logger.Error("failed to replay history", zap.Error(err))
		sendSSEEvent(w, flusher, "error", map[string]string{
			"error": "failed to replay history",
		})
		return
	}
	for i := range hist.Messages {
		select {
		case <-done:
			return
		default:
		}
		sendSSEEvent(w, flusher, "message", hist.Messages[i])
	}

	sendSSEEvent(w, flusher, "replay_complete", &replayCompleteEvent{
		ConversationID: hist.ConversationID,
		MessageCount:   len(hist.Messages),
	})

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	// Forward live events until the client goes away.
	for {
		select {
		case <-done:
			h.logger.Info("SSE client disconnected", zap.String("channel", channel))
			return

		case ev, open := <-events:
			if !open {
				return
			}
			sendSSEEvent(w, flusher, string(ev.Kind), json.RawMessage(ev.Payload))

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &heartbeatEvent{
				Timestamp: time.Now(),
			})
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
