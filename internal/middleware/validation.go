package middleware

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateUserID validates an opaque identity-provider user id.
func ValidateUserID(id string) error {
	if len(id) == 0 {
		return errors.New("user ID cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("user ID exceeds maximum length")
	}
	if strings.ContainsAny(id, ": \t\n") {
		return errors.New("user ID contains reserved characters")
	}
	return nil
}

// ValidateMessageID validates the message:{timestamp}:{random} key shape.
func ValidateMessageID(id string) error {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != "message" || parts[2] == "" {
		return errors.New("invalid message ID format")
	}
	if _, err := strconv.ParseInt(parts[1], 10, 64); err != nil {
		return errors.New("invalid message ID format")
	}
	return nil
}
