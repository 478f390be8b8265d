package sync

import (
	"context"
	"encoding/json"
	"fmt"
	gosync "sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	"github.com/angelmondragon/packfinderz-pos/pkg/logger"
	"github.com/google/uuid"
)

// ChangeStream hands out per-cart subscriptions to the backend's cart
// change-event feed.
type ChangeStream interface {
	Subscribe(ctx context.Context, cartID uuid.UUID) (Subscription, error)
}

// Subscription delivers change events for one cart until closed. Events
// is closed after Close returns or the stream fails permanently.
type Subscription interface {
	Events() <-chan cart.ChangeEvent
	Close() error
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// PubSubStream adapts a Pub/Sub subscriber into per-cart change
// subscriptions. Every message is acked; events for other carts are
// dropped, and undecodable payloads are acked and logged so a poison
// message cannot wedge the feed.
type PubSubStream struct {
	subscriber receiver
	logg       *logger.Logger
}

// NewPubSubStream wraps the cart-events subscriber.
func NewPubSubStream(subscriber receiver, logg *logger.Logger) (*PubSubStream, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("pubsub subscriber required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &PubSubStream{subscriber: subscriber, logg: logg}, nil
}

// Subscribe starts a receive loop filtered to the given cart id.
func (p *PubSubStream) Subscribe(ctx context.Context, cartID uuid.UUID) (Subscription, error) {
	if cartID == uuid.Nil {
		return nil, fmt.Errorf("cart id required")
	}

	streamCtx, cancel := context.WithCancel(ctx)
	sub := &pubsubSubscription{
		events: make(chan cart.ChangeEvent, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer sub.closeEvents()

		err := p.subscriber.Receive(streamCtx, func(msgCtx context.Context, msg *pubsub.Message) {
			defer msg.Ack()

			var event cart.ChangeEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				p.logg.Warn(msgCtx, "dropping undecodable cart event")
				return
			}
			if event.CartID != cartID {
				return
			}
			select {
			case sub.events <- event:
			case <-streamCtx.Done():
			}
		})
		if err != nil && streamCtx.Err() == nil {
			p.logg.Error(streamCtx, "cart event receive loop stopped", err)
		}
	}()

	return sub, nil
}

type pubsubSubscription struct {
	events    chan cart.ChangeEvent
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce gosync.Once
}

func (s *pubsubSubscription) Events() <-chan cart.ChangeEvent {
	return s.events
}

func (s *pubsubSubscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *pubsubSubscription) closeEvents() {
	s.closeOnce.Do(func() { close(s.events) })
}
