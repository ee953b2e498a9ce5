package errors

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "explicit transient error", err: NewTransientError(errors.New("test"), "transient"), expected: true},
		{name: "explicit permanent error", err: NewPermanentError(errors.New("test"), "permanent"), expected: false},
		{name: "config error", err: NewConfigError("BRIGHTDATA_API_TOKEN", ""), expected: false},
		{name: "rate limit 429", err: fmt.Errorf("API error 429: rate limit exceeded"), expected: true},
		{name: "server error 502", err: fmt.Errorf("502 bad gateway"), expected: true},
		{name: "timeout error", err: fmt.Errorf("context deadline exceeded"), expected: true},
		{name: "connection refused", err: fmt.Errorf("dial tcp 127.0.0.1:11434: connect: connection refused"), expected: true},
		{name: "syscall reset", err: fmt.Errorf("read: %w", syscall.ECONNRESET), expected: true},
		{name: "caller cancelled", err: fmt.Errorf("call: %w", context.Canceled), expected: false},
		{name: "unauthorized 401", err: fmt.Errorf("HTTP 401: unauthorized"), expected: false},
		{name: "not found 404", err: fmt.Errorf("HTTP 404: not found"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "explicit permanent error", err: NewPermanentError(errors.New("test"), "permanent"), expected: true},
		{name: "explicit transient error", err: NewTransientError(errors.New("test"), "transient"), expected: false},
		{name: "forbidden 403", err: fmt.Errorf("HTTP 403: forbidden"), expected: true},
		{name: "invalid argument", err: fmt.Errorf("invalid url"), expected: true},
		{name: "unknown", err: fmt.Errorf("something odd"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPermanent(tt.err))
		})
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := NewConfigError("BRIGHTDATA_API_TOKEN", "")
	assert.Equal(t, "BRIGHTDATA_API_TOKEN environment variable not set", err.Error())
	assert.Equal(t, "custom", NewConfigError("X", "custom").Error())
}

func TestFormatForUser(t *testing.T) {
	assert.Equal(t, "", FormatForUser(nil))
	assert.Equal(t, "friendly", FormatForUser(NewTransientError(errors.New("raw"), "friendly")))
	assert.Equal(t, "Request was cancelled.", FormatForUser(fmt.Errorf("x: %w", context.Canceled)))
	assert.Equal(t, "Request timed out before a response was ready.", FormatForUser(context.DeadlineExceeded))
	assert.Equal(t, "plain failure", FormatForUser(errors.New("plain failure")))
}
