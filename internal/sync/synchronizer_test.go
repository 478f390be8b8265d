package sync

import (
	"context"
	"errors"
	"io"
	gosync "sync"
	"testing"
	"time"

	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	"github.com/angelmondragon/packfinderz-pos/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-pos/pkg/errors"
	"github.com/angelmondragon/packfinderz-pos/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type repoStub struct {
	mu    gosync.Mutex
	calls int
	cart  *cart.Cart
	err   error
}

func (r *repoStub) GetOrCreateCart(_ context.Context, _ cart.Scope, _ bool) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.cart.Clone(), nil
}

func (r *repoStub) AddToCart(context.Context, uuid.UUID, cart.AddItemInput) (*cart.Cart, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not used in this test")
}

func (r *repoStub) UpdateItemQuantity(context.Context, uuid.UUID, uuid.UUID, int) (*cart.Cart, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not used in this test")
}

func (r *repoStub) RemoveFromCart(context.Context, uuid.UUID, uuid.UUID) (*cart.Cart, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not used in this test")
}

func (r *repoStub) ClearCart(context.Context, uuid.UUID) (*cart.Cart, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not used in this test")
}

func (r *repoStub) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *repoStub) setCart(c *cart.Cart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart = c
}

func (r *repoStub) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

type fakeSub struct {
	events chan cart.ChangeEvent
	once   gosync.Once
	mu     gosync.Mutex
	closed bool
}

func newFakeSub() *fakeSub {
	return &fakeSub{events: make(chan cart.ChangeEvent, 16)}
}

func (s *fakeSub) Events() <-chan cart.ChangeEvent { return s.events }

func (s *fakeSub) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.events)
	})
	return nil
}

func (s *fakeSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// failAndClose simulates a stream failure: the channel closes without
// Close being called by the synchronizer.
func (s *fakeSub) failAndClose() {
	s.once.Do(func() { close(s.events) })
}

type fakeStream struct {
	mu   gosync.Mutex
	subs []*fakeSub
	err  error
}

func (f *fakeStream) Subscribe(_ context.Context, _ uuid.UUID) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sub := newFakeSub()
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeStream) subCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeStream) subAt(i int) *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[i]
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func trackedFixture(t *testing.T) (*Synchronizer, *cart.Aggregate, *repoStub, *fakeStream, *cart.Cart) {
	t.Helper()

	repo := &repoStub{}
	agg, err := cart.NewAggregate(repo)
	if err != nil {
		t.Fatalf("building aggregate: %v", err)
	}

	scope := cart.Scope{StoreID: uuid.New(), LocationID: uuid.New()}
	tracked := &cart.Cart{ID: uuid.New(), Scope: scope}
	repo.setCart(tracked)
	if _, err := agg.GetOrCreate(context.Background(), scope, false); err != nil {
		t.Fatalf("loading cart: %v", err)
	}

	stream := &fakeStream{}
	s, err := NewSynchronizer(agg, stream, testLogger(), nil)
	if err != nil {
		t.Fatalf("building synchronizer: %v", err)
	}
	if err := s.Track(context.Background(), tracked); err != nil {
		t.Fatalf("tracking cart: %v", err)
	}
	t.Cleanup(s.Stop)
	return s, agg, repo, stream, tracked
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func changeEvent(cartID uuid.UUID) cart.ChangeEvent {
	return cart.ChangeEvent{CartID: cartID, Type: enums.CartChangeItemAdded, OccurredAt: time.Now()}
}

func TestChangeEventTriggersWholesaleReplace(t *testing.T) {
	_, agg, repo, stream, tracked := trackedFixture(t)

	updated := tracked.Clone()
	updated.Items = []cart.Item{{ID: uuid.New(), ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.NewFromInt(10)}}
	repo.setCart(updated)

	stream.subAt(0).events <- changeEvent(tracked.ID)

	waitFor(t, func() bool {
		current := agg.Current()
		return current != nil && len(current.Items) == 1 && current.Items[0].Quantity == 3
	})
}

func TestEventBurstConvergesToAuthoritativeState(t *testing.T) {
	_, agg, repo, stream, tracked := trackedFixture(t)

	final := tracked.Clone()
	final.Items = []cart.Item{
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(35)},
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
	}
	repo.setCart(final)

	sub := stream.subAt(0)
	for i := 0; i < 3; i++ {
		sub.events <- changeEvent(tracked.ID)
	}

	waitFor(t, func() bool {
		current := agg.Current()
		return current != nil && len(current.Items) == 2
	})
	// Every event lands on the same backend truth, so however many
	// refetches ran, the local view matches the final state.
	current := agg.Current()
	if !current.Totals().Subtotal.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("unexpected converged subtotal %s", current.Totals().Subtotal)
	}
}

func TestRefetchFailureKeepsLastKnownState(t *testing.T) {
	_, agg, repo, stream, tracked := trackedFixture(t)

	known := tracked.Clone()
	known.Items = []cart.Item{{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(10)}}
	repo.setCart(known)
	stream.subAt(0).events <- changeEvent(tracked.ID)
	waitFor(t, func() bool { return len(agg.Current().Items) == 1 })

	before := repo.callCount()
	repo.setErr(errors.New("backend unavailable"))
	stream.subAt(0).events <- changeEvent(tracked.ID)

	waitFor(t, func() bool { return repo.callCount() > before })
	if len(agg.Current().Items) != 1 {
		t.Fatalf("failed refetch must not clear the local cart, got %d items", len(agg.Current().Items))
	}
}

func TestTrackReplacesPriorSubscription(t *testing.T) {
	s, _, repo, stream, _ := trackedFixture(t)

	next := &cart.Cart{ID: uuid.New(), Scope: cart.Scope{StoreID: uuid.New(), LocationID: uuid.New()}}
	repo.setCart(next)
	if err := s.Track(context.Background(), next); err != nil {
		t.Fatalf("re-track: %v", err)
	}

	if !stream.subAt(0).isClosed() {
		t.Fatal("prior subscription must be closed before the new one starts")
	}
	if stream.subCount() != 2 {
		t.Fatalf("expected a fresh subscription, got %d total", stream.subCount())
	}
}

func TestStreamFailureResubscribesAndRefetches(t *testing.T) {
	_, _, repo, stream, _ := trackedFixture(t)

	before := repo.callCount()
	stream.subAt(0).failAndClose()

	waitFor(t, func() bool { return stream.subCount() == 2 })
	// Resubscribe always refetches: state may have moved while dark.
	waitFor(t, func() bool { return repo.callCount() > before })
}

func TestStopIsSafeWhenIdle(t *testing.T) {
	repo := &repoStub{cart: &cart.Cart{ID: uuid.New()}}
	agg, err := cart.NewAggregate(repo)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSynchronizer(agg, &fakeStream{}, testLogger(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Stop()
	s.Stop()
}
