package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	"github.com/angelmondragon/packfinderz-pos/pkg/logger"
	"github.com/angelmondragon/packfinderz-pos/pkg/metrics"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const resubscribeBackoff = 500 * time.Millisecond

// Synchronizer keeps one cart aggregate consistent with the backend by
// read-repair: any change event triggers a full authoritative refetch
// and wholesale replacement of the local view. No field-level merging,
// so concurrent registers can never leave a torn item list behind.
type Synchronizer struct {
	agg     *cart.Aggregate
	stream  ChangeStream
	logg    *logger.Logger
	metrics *metrics.SyncMetrics

	mu     gosync.Mutex
	cancel context.CancelFunc
	sub    Subscription
	done   chan struct{}
	scope  cart.Scope
	cartID uuid.UUID
}

// NewSynchronizer builds a synchronizer for the given aggregate.
func NewSynchronizer(agg *cart.Aggregate, stream ChangeStream, logg *logger.Logger, m *metrics.SyncMetrics) (*Synchronizer, error) {
	if agg == nil {
		return nil, fmt.Errorf("cart aggregate required")
	}
	if stream == nil {
		return nil, fmt.Errorf("change stream required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Synchronizer{agg: agg, stream: stream, logg: logg, metrics: m}, nil
}

// Track subscribes to change events for the given cart. Any prior
// subscription is cancelled and drained first; two listeners must never
// write into the same aggregate.
func (s *Synchronizer) Track(ctx context.Context, c *cart.Cart) error {
	if c == nil {
		return fmt.Errorf("cart required")
	}

	s.Stop()

	listenCtx, cancel := context.WithCancel(ctx)
	sub, err := s.stream.Subscribe(listenCtx, c.ID)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribing to cart %s: %w", c.ID, err)
	}

	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.sub = sub
	s.done = done
	s.scope = c.Scope
	s.cartID = c.ID
	s.mu.Unlock()

	go s.listen(listenCtx, sub, done)
	return nil
}

// Stop tears down the active subscription deterministically. Safe to
// call when nothing is tracked.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	sub := s.sub
	done := s.done
	s.cancel = nil
	s.sub = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		_ = sub.Close()
	}
	if done != nil {
		<-done
	}
}

func (s *Synchronizer) listen(ctx context.Context, sub Subscription, done chan struct{}) {
	defer close(done)

	logCtx := s.logg.WithCartID(ctx, s.cartID.String())
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					return
				}
				next, err := s.resubscribe(ctx)
				if err != nil {
					s.logg.Error(logCtx, "cart sync degraded to last known state", err)
					return
				}
				sub = next
				continue
			}
			s.refetch(logCtx)
		}
	}
}

// refetch replaces the local cart with the backend's current state. The
// event payload is never inspected: rapid bursts coalesce into
// identical idempotent refetches, and the caller's own echoes are
// handled the same as foreign edits.
func (s *Synchronizer) refetch(ctx context.Context) {
	s.mu.Lock()
	scope := s.scope
	s.mu.Unlock()

	s.metrics.IncRefetch()
	if _, err := s.agg.GetOrCreate(ctx, scope, false); err != nil {
		s.metrics.IncRefetchFailure()
		s.logg.Error(ctx, "cart refetch failed, keeping last known state", err)
	}
}

func (s *Synchronizer) resubscribe(ctx context.Context) (Subscription, error) {
	s.mu.Lock()
	cartID := s.cartID
	s.mu.Unlock()

	var sub Subscription
	backoff := retry.WithMaxRetries(1, retry.NewConstant(resubscribeBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		s.metrics.IncResubscribe()
		next, err := s.stream.Subscribe(ctx, cartID)
		if err != nil {
			return retry.RetryableError(err)
		}
		sub = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	// The channel closed underneath us, so the backend state may have
	// moved while we were dark.
	s.refetch(ctx)
	return sub, nil
}
