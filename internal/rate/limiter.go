// Package rate gates outbound API calls so parallel batch fetches stay
// under the remote service's per-user rate limits.
package rate

import (
	"context"
	"fmt"
	"time"
)

// Limiter gates outbound API calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket releases permits at a fixed rate, shared by all fetch
// workers of a batch. Unclaimed permits accumulate up to one second's
// worth, so a batch starting after an idle period gets a full burst.
type TokenBucket struct {
	interval time.Duration
	tokens   chan struct{}
	stop     chan struct{}
	done     chan struct{}
}

// NewTokenBucket returns a limiter releasing rps permits per second.
// Stop must be called to release the refill goroutine.
func NewTokenBucket(rps int) *TokenBucket {
	if rps <= 0 {
		rps = 1
	}
	tb := &TokenBucket{
		interval: time.Second / time.Duration(rps),
		tokens:   make(chan struct{}, rps),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	// The first caller proceeds without waiting an interval.
	tb.tokens <- struct{}{}
	go tb.refill()
	return tb
}

func (t *TokenBucket) refill() {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			select {
			case t.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Wait blocks until a permit is available or the context is canceled.
func (t *TokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate wait canceled: %w", ctx.Err())
	case <-t.tokens:
		return nil
	}
}

// Stop ends the refill goroutine and returns once it has exited.
// Waiters already blocked in Wait are not released; callers stop the
// limiter only after the batch has drained.
func (t *TokenBucket) Stop() {
	close(t.stop)
	<-t.done
}

var _ Limiter = (*TokenBucket)(nil)
