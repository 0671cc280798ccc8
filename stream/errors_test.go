package stream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	transient := []string{
		"429 Too Many Requests",
		"Rate limit exceeded for deployment",
		"HTTP 503 Service Unavailable",
		"context deadline exceeded: request timed out",
		"failed to complete the prompt",
		"internal server error",
	}
	for _, msg := range transient {
		assert.True(t, IsTransient(errors.New(msg)), msg)
	}

	assert.False(t, IsTransient(errors.New("invalid request: missing model")))
	assert.False(t, IsTransient(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, MsgTransient, UserMessage(errors.New("502 Bad Gateway")))
	assert.Equal(t, MsgGeneric, UserMessage(errors.New("content filter rejected input")))
}
