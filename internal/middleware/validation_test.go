package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessageContent(t *testing.T) {
	assert.NoError(t, ValidateMessageContent("hello"))
	assert.NoError(t, ValidateMessageContent(strings.Repeat("a", 100000)))

	assert.Error(t, ValidateMessageContent(""))
	assert.Error(t, ValidateMessageContent(strings.Repeat("a", 100001)))
	assert.Error(t, ValidateMessageContent(string([]byte{0xff, 0xfe})))
}

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("user-1"))
	assert.NoError(t, ValidateUserID("a.b_c@example.com"))

	assert.Error(t, ValidateUserID(""))
	assert.Error(t, ValidateUserID(strings.Repeat("a", 129)))
	assert.Error(t, ValidateUserID("has space"))
	assert.Error(t, ValidateUserID("has/slash"))
	assert.Error(t, ValidateUserID(`has\backslash`))
}

func TestValidateMessageID(t *testing.T) {
	assert.NoError(t, ValidateMessageID("msg_abc123"))

	assert.Error(t, ValidateMessageID(""))
	assert.Error(t, ValidateMessageID(strings.Repeat("a", 129)))
}
