package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pairchat/dm-core/internal/middleware"
	"github.com/pairchat/dm-core/internal/service"
	"github.com/pairchat/dm-core/pkg/logger"
)

// AuthHandler bridges the identity provider's session into the store.
type AuthHandler struct {
	chatService *service.ChatService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *service.ChatService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		chatService: svc,
		logger:      log,
	}
}

// Check handles POST /api/v1/auth/check. A first visit registers the user's
// profile; later visits are no-ops.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile := middleware.GetProfile(ctx)

	if err := h.chatService.EnsureUser(ctx, profile); err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
