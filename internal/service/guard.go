package service

import (
	"github.com/pairchat/dm-core/internal/apperr"
	"github.com/pairchat/dm-core/internal/model"
)

// assertOwner enforces per-message ownership: only the original sender may
// mutate a message. Applied before every edit and delete.
func assertOwner(msg *model.Message, requesterID string) error {
	if msg.SenderID != requesterID {
		return apperr.Forbidden("only the sender may modify this message")
	}
	return nil
}
