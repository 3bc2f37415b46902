package ports

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", ErrRateLimited, true},
		{"service unavailable", ErrServiceUnavailable, true},
		{"timeout", ErrTimeout, true},
		{"wrapped rate limit", fmt.Errorf("provider: %w", ErrRateLimited), true},
		{"authentication", ErrAuthenticationFailed, false},
		{"invalid response", ErrInvalidResponse, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestLLMError(t *testing.T) {
	retryAfter := 5 * time.Second
	err := &LLMError{
		Model:      "gpt-4o-mini",
		Operation:  "complete",
		Err:        ErrRateLimited,
		RetryAfter: &retryAfter,
	}

	assert.Contains(t, err.Error(), "gpt-4o-mini")
	assert.Contains(t, err.Error(), "complete")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, IsRetryable(err))
}
