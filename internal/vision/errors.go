// Package vision holds the provider-neutral plumbing for image-reading models:
// the provider registry, rate-limit errors and the fallback chain.
package vision

import (
	"fmt"
	"strconv"
	"time"
)

const defaultRetryAfterSecs = 60

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// RateLimitError indicates a vision provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = defaultRetryAfterSecs
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// StatusError builds the error for a non-2xx provider response, promoting 429 to a RateLimitError.
func StatusError(provider string, status int, body []byte, retryAfterHeader string) error {
	base := &APIError{Provider: provider, StatusCode: status, Body: truncate(string(body), 500)}
	if status == 429 {
		return NewRateLimitError(provider, base, ParseRetryAfterHeader(retryAfterHeader))
	}
	return base
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
