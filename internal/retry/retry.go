package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy retries an operation with capped exponential backoff
type Policy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewPolicy creates a new retry policy
func NewPolicy(maxAttempts int, initialDelay, maxDelay time.Duration) *Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Policy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

// Execute runs fn until it succeeds, attempts run out, or ctx is done
func (p *Policy) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := p.initialDelay

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		// Don't sleep after last attempt
		if attempt == p.maxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("gave up after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * 1.5)
		if delay > p.maxDelay {
			delay = p.maxDelay
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.maxAttempts, lastErr)
}
