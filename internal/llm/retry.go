package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter. With MaxAttempts of 1 or less it makes a
// single call and returns its result unchanged.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *slog.Logger
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg, logger: slog.Default()}
}

// retryPolicy says how an error may be retried.
type retryPolicy int

const (
	retryNever retryPolicy = iota
	retryOnce
	retryAlways
)

// policyFor classifies err. Unknown errors are assumed to be network
// trouble and retried.
func policyFor(err error) retryPolicy {
	var (
		rejected *ErrRequestRejected
		invalid  *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &rejected):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	}
	return retryAlways
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	retriedOnce := false

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= attempts {
			return nil, err
		}
		switch policyFor(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if retriedOnce {
				return nil, err
			}
			retriedOnce = true
		}

		wait := r.backoff(attempt-1, err)
		r.logger.Warn("LLM call failed, retrying", "purpose", PurposeFrom(ctx),
			"attempt", attempt, "of", attempts, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff computes the wait before the retry that follows attempt n
// (zero-based). A rate limit's RetryAfter wins over the computed value.
func (r *RetryProvider) backoff(n int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(n))
	wait = math.Min(wait, float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1) // ±20% jitter
	return time.Duration(math.Max(wait, 0))
}
