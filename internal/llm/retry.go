package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryProvider re-issues failed calls with exponential backoff. What is
// worth retrying depends on the failure: rate limits, outages, and plain
// transport errors always; a malformed reply exactly once; truncation
// and cancellation never.
type retryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps a provider with the backoff policy.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{inner: p, cfg: cfg}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	invalidSeen := false

	for attempt := range r.cfg.MaxAttempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err, &invalidSeen) || attempt == r.cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.wait(attempt, err)):
		}
	}

	return nil, lastErr
}

func (r *retryProvider) ModelID() string {
	return r.inner.ModelID()
}

func retryable(err error, invalidSeen *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Truncation is a MaxTokens configuration problem; the same request
	// would truncate again.
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return false
	}

	// A malformed reply gets one more chance; a second one means the
	// model cannot produce this shape.
	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
		return true
	}

	// Rate limits, outages, and unclassified transport errors.
	return true
}

// wait computes the pause before the next attempt: the provider's own
// Retry-After when it sent one, otherwise exponential backoff with 20%
// jitter either way, capped at MaxWait.
func (r *retryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	w := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	if w > float64(r.cfg.MaxWait) {
		w = float64(r.cfg.MaxWait)
	}

	w += w * 0.2 * (2*rand.Float64() - 1)
	if w < 0 {
		w = 0
	}
	return time.Duration(w)
}
