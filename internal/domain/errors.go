package domain

import (
	"errors"
	"fmt"
	"time"
)

// KeyPrefix is the default namespace of every storage key.
const KeyPrefix = "helpdesk:"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidMessage signals an empty or unreadable chat message.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrMessageTooLong signals a chat message over the configured length.
	ErrMessageTooLong = errors.New("message too long")
	// ErrMaliciousContent signals script or markup injection in user input.
	ErrMaliciousContent = errors.New("invalid content detected")
	// ErrInvalidFeedback signals a malformed feedback submission.
	ErrInvalidFeedback = errors.New("invalid feedback")
	// ErrInvalidUsagePeriod signals an unknown usage report period.
	ErrInvalidUsagePeriod = errors.New("invalid usage period")
	// ErrInvalidKnowledge signals a knowledge document that cannot be parsed.
	ErrInvalidKnowledge = errors.New("invalid knowledge document")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrLLMProviderError signals a chat completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrLLMQuotaExceeded signals that the LLM token budget is spent.
	ErrLLMQuotaExceeded = errors.New("llm token budget exceeded")
)

// RateLimitError wraps ErrRateLimited with the time until the window resets.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited.Error(), e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// NewRateLimited creates a rate limit error.
func NewRateLimited(retryAfter time.Duration) error {
	return &RateLimitError{RetryAfter: retryAfter}
}
