package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("message cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateUserID validates a local user identifier.
func ValidateUserID(id string) error {
	if len(id) == 0 {
		return errors.New("user_id cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("user_id exceeds maximum length")
	}
	if strings.ContainsAny(id, " /\\") {
		return errors.New("user_id contains invalid characters")
	}
	return nil
}

// ValidateMessageID validates a remote message identifier. Remote IDs are
// opaque strings, so only shape is checked.
func ValidateMessageID(id string) error {
	if len(id) == 0 {
		return errors.New("message_id cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("message_id exceeds maximum length")
	}
	return nil
}
