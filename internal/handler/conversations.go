package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/middleware"
	"github.com/pairchat/dm-core/internal/service"
	"github.com/pairchat/dm-core/pkg/logger"
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	chatService *service.ChatService
	logger      *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.ChatService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		chatService: svc,
		logger:      log,
	}
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	resp, err := h.chatService.ListConversations(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
