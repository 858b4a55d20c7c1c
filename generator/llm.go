package generator

import (
	"context"
	"errors"
	"fmt"
)

// Completion is a single model response.
type Completion struct {
	Text        string
	TotalTokens int64
}

// LLMClient abstracts the model transport so it can be mocked in tests.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}

// LLMSettings configure the real transport.
type LLMSettings struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Failure classes the retry loop keys on. Transport implementations wrap
// these so callers can match with errors.Is.
var (
	ErrRateLimited = errors.New("llm: rate limited")
	ErrTimeout     = errors.New("llm: request timed out")
	ErrConnection  = errors.New("llm: connection failed")
	ErrUpstream    = errors.New("llm: api error")
)

// RateLimitedError carries the provider's retry hint when one was given.
// It matches ErrRateLimited under errors.Is.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 when unknown
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("llm: rate limited, retry after %ds", e.RetryAfter)
	}
	return "llm: rate limited"
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }
