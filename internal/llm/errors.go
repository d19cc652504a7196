package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrProviderUnavailable reports that the provider could not serve the
// call at all: network failure, 5xx, or an exhausted mock.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrRateLimit reports a 429 from the provider. RetryAfter is the pause
// the provider asked for, zero when it did not send one.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter == 0 {
		return fmt.Sprintf("rate limited: %v", e.Err)
	}
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded reports a reply cut off at the MaxTokens cap.
// Truncated JSON never validates, so the same request would only
// truncate again; retrying is pointless.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrInvalidResponse reports a reply that was not parseable JSON or
// failed schema validation. Content keeps the offending reply so the
// event journal can show what came back.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
