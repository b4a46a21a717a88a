package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/hamed0406/staffup/internal/domain"
)

// RetryProvider retries a failing Provider, doubling Backoff between attempts.
type RetryProvider struct {
	Inner    Provider
	Attempts int
	Backoff  time.Duration
}

func (r *RetryProvider) Fetch(ctx context.Context) (domain.Snapshot, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := r.Backoff
	var lastErr error
	for i := 0; i < attempts; i++ {
		snap, err := r.Inner.Fetch(ctx)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return domain.Snapshot{}, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return domain.Snapshot{}, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
