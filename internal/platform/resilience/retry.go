package resilience

import (
	"context"
	"time"
)

// RetryPolicy bounds optimistic-concurrency retries.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 3,
		Backoff:  10 * time.Millisecond,
	}
}

// Retry calls fn until it succeeds, returns an error retryable rejects, or
// the attempts run out. The last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, retryable func(error) bool, fn func(attempt int) error) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	var err error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}
		if retryable == nil || !retryable(err) || attempt == policy.Attempts {
			return err
		}

		if policy.Backoff > 0 {
			timer := time.NewTimer(time.Duration(attempt) * policy.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return err
}
