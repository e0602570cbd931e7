package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitai-planner-be/pkg/llm"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackOffMin  = 4 * time.Second
	DefaultBackOffMax  = 30 * time.Second
)

// RetryPolicy decides how often a provider call is attempted and how long to
// wait in between. Only errors accepted by Retryable are retried.
type RetryPolicy struct {
	MaxAttempts int
	NewBackOff  func() backoff.BackOff
	Retryable   func(error) bool
	// OnRetry is called before each wait; may be nil.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		NewBackOff:  ExponentialBackOff(DefaultBackOffMin, DefaultBackOffMax),
		Retryable:   llm.IsTransient,
	}
}

// ExponentialBackOff waits floor, 2*floor, 4*floor ... capped at ceiling, without jitter.
func ExponentialBackOff(floor, ceiling time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = floor
		b.Multiplier = 2
		b.MaxInterval = ceiling
		b.RandomizationFactor = 0
		return b
	}
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable == nil {
		return llm.IsTransient(err)
	}
	return p.Retryable(err)
}

// Do runs op until it succeeds, fails with a non-retryable error or the
// attempt budget is spent. It returns the number of attempts made. Running
// out of attempts wraps the last error in ErrRetriesExhausted.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context, attempt int) (string, error)) (string, int, error) {
	newBackOff := p.NewBackOff
	if newBackOff == nil {
		newBackOff = ExponentialBackOff(DefaultBackOffMin, DefaultBackOffMax)
	}
	maxTries := p.maxAttempts()

	attempts := 0
	out, err := backoff.Retry(ctx, func() (string, error) {
		attempts++
		res, err := op(ctx, attempts)
		if err == nil {
			return res, nil
		}
		if !p.retryable(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	},
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(uint(maxTries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if p.OnRetry != nil {
				p.OnRetry(attempts, err, wait)
			}
		}),
	)
	if err == nil {
		return out, attempts, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return "", attempts, ctxErr
	}
	if attempts >= maxTries && p.retryable(err) {
		return "", attempts, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
	}
	return "", attempts, err
}
