package register

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	"github.com/angelmondragon/packfinderz-pos/internal/checkout"
	possync "github.com/angelmondragon/packfinderz-pos/internal/sync"
	"github.com/angelmondragon/packfinderz-pos/pkg/logger"
	"github.com/angelmondragon/packfinderz-pos/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

var validate = validator.New()

type queueRemover interface {
	Remove(ctx context.Context, storeID, locationID, customerID uuid.UUID) error
}

// Params wires one register session. Queue and metrics are optional;
// Closers are released when the session closes.
type Params struct {
	Repo            cart.Repository      `validate:"required"`
	Stream          possync.ChangeStream `validate:"required"`
	Gateway         checkout.Gateway     `validate:"required"`
	Queue           queueRemover
	Logger          *logger.Logger `validate:"required"`
	Info            checkout.SessionInfo
	CheckoutConfig  checkout.Config
	SyncMetrics     *metrics.SyncMetrics
	CheckoutMetrics *metrics.CheckoutMetrics
	Closers         []io.Closer
}

// Session is the owning workflow context for one physical register: it
// holds the cart aggregate, its synchronizer, and the checkout
// orchestrator, and tears them down deterministically.
type Session struct {
	scope    cart.Scope
	agg      *cart.Aggregate
	sync     *possync.Synchronizer
	checkout *checkout.Orchestrator
	logg     *logger.Logger
	closers  []io.Closer
}

// NewSession builds the session for a register scope.
func NewSession(scope cart.Scope, params Params) (*Session, error) {
	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid session params: %w", err)
	}
	if scope.StoreID == uuid.Nil || scope.LocationID == uuid.Nil {
		return nil, fmt.Errorf("store and location ids are required")
	}

	agg, err := cart.NewAggregate(params.Repo)
	if err != nil {
		return nil, err
	}
	synchronizer, err := possync.NewSynchronizer(agg, params.Stream, params.Logger, params.SyncMetrics)
	if err != nil {
		return nil, err
	}
	orchestrator, err := checkout.NewOrchestrator(
		params.Gateway,
		agg,
		params.Queue,
		params.Info,
		params.CheckoutConfig,
		params.Logger,
		params.CheckoutMetrics,
	)
	if err != nil {
		return nil, err
	}

	return &Session{
		scope:    scope,
		agg:      agg,
		sync:     synchronizer,
		checkout: orchestrator,
		logg:     params.Logger,
		closers:  params.Closers,
	}, nil
}

// Open loads the scope's open cart and starts tracking its changes.
func (s *Session) Open(ctx context.Context) (*cart.Cart, error) {
	loaded, err := s.agg.GetOrCreate(ctx, s.scope, false)
	if err != nil {
		return nil, err
	}
	if err := s.sync.Track(ctx, loaded); err != nil {
		return nil, err
	}
	logCtx := s.logg.WithCartID(ctx, loaded.ID.String())
	s.logg.Info(logCtx, "register session opened")
	return loaded, nil
}

// SwitchCustomer re-scopes the register to a different customer. The
// old cart's subscription is cancelled before the new cart is tracked.
func (s *Session) SwitchCustomer(ctx context.Context, customerID *uuid.UUID, freshStart bool) (*cart.Cart, error) {
	s.sync.Stop()

	s.scope.CustomerID = customerID
	loaded, err := s.agg.GetOrCreate(ctx, s.scope, freshStart)
	if err != nil {
		return nil, err
	}
	if err := s.sync.Track(ctx, loaded); err != nil {
		return nil, err
	}
	if err := s.checkout.Reset(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Cart returns the current cart snapshot.
func (s *Session) Cart() *cart.Cart {
	return s.agg.Current()
}

// Aggregate exposes the cart mutation surface.
func (s *Session) Aggregate() *cart.Aggregate {
	return s.agg
}

// Checkout exposes the checkout orchestrator.
func (s *Session) Checkout() *checkout.Orchestrator {
	return s.checkout
}

// Close stops synchronization and releases owned resources.
func (s *Session) Close() error {
	s.sync.Stop()

	var err error
	for _, closer := range s.closers {
		if closer == nil {
			continue
		}
		err = multierr.Append(err, closer.Close())
	}
	return err
}
