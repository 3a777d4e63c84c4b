package resilience

import (
	"context"
	"errors"
	"testing"
)

var errStale = errors.New("stale version")

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 3}, isStale, func(int) error {
		calls++
		if calls < 2 {
			return errStale
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("unexpected calls: got=%d want=2", calls)
	}
}

func TestRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 3}, isStale, func(int) error {
		calls++
		return errStale
	})
	if !errors.Is(err, errStale) {
		t.Fatalf("expected stale error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("unexpected calls: got=%d want=3", calls)
	}
}

func TestRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	permanent := errors.New("not found")
	calls := 0
	err := Retry(context.Background(), RetryPolicy{Attempts: 5}, isStale, func(int) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("unexpected calls: got=%d want=1", calls)
	}
}

func isStale(err error) bool {
	return errors.Is(err, errStale)
}
