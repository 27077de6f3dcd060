package vision_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardenrich/internal/vision"
)

func TestRateLimitError_ErrorString(t *testing.T) {
	rlErr := vision.NewRateLimitError("claude", fmt.Errorf("rate limited"), 30)

	assert.Contains(t, rlErr.Error(), "claude")
	assert.Contains(t, rlErr.Error(), "rate limited")
	assert.Contains(t, rlErr.Error(), "30s")
}

func TestRateLimitError_ErrorsAs(t *testing.T) {
	rlErr := vision.NewRateLimitError("openai", fmt.Errorf("rate limited"), 30)
	wrapped := fmt.Errorf("describe failed: %w", rlErr)

	var target *vision.RateLimitError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "openai", target.Provider)
	assert.Equal(t, 30*time.Second, target.RetryAfter)
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	rlErr := vision.NewRateLimitError("openai", fmt.Errorf("err"), 0)

	assert.Equal(t, 60*time.Second, rlErr.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, vision.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, vision.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, vision.ParseRetryAfterHeader("invalid"))
}

func TestStatusError(t *testing.T) {
	err := vision.StatusError("openai", 500, []byte("boom"), "")

	var apiErr *vision.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "boom")

	err = vision.StatusError("openai", 429, []byte("slow down"), "12")

	var rlErr *vision.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 12*time.Second, rlErr.RetryAfter)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)
}
