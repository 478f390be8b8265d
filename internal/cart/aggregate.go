package cart

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/angelmondragon/packfinderz-pos/pkg/errors"
	"github.com/google/uuid"
)

// Aggregate is the register's local view of one cart. It never mutates
// optimistically: every operation writes through to the repository and
// installs the authoritative response, so the local view always matches
// some real backend state.
type Aggregate struct {
	repo Repository

	mu   sync.RWMutex
	cart *Cart
}

// NewAggregate builds an aggregate backed by the provided repository.
func NewAggregate(repo Repository) (*Aggregate, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &Aggregate{repo: repo}, nil
}

// Current returns a snapshot of the cart, or nil before the first load.
func (a *Aggregate) Current() *Cart {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cart.Clone()
}

// Replace installs an authoritative cart snapshot wholesale. Used by
// the synchronizer after a refetch.
func (a *Aggregate) Replace(c *Cart) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cart = c.Clone()
}

// GetOrCreate loads (or creates) the open cart for the scope and makes
// it the aggregate's current cart. freshStart forces a clean cart and
// is the post-sale guard against stale items leaking into the next
// customer's session.
func (a *Aggregate) GetOrCreate(ctx context.Context, scope Scope, freshStart bool) (*Cart, error) {
	loaded, err := a.repo.GetOrCreateCart(ctx, scope, freshStart)
	if err != nil {
		return nil, err
	}
	a.Replace(loaded)
	return loaded.Clone(), nil
}

// AddItem appends or merges a line item. Quantity below one is rejected
// before the round-trip.
func (a *Aggregate) AddItem(ctx context.Context, input AddItemInput) (*Cart, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	cartID, err := a.currentID()
	if err != nil {
		return nil, err
	}
	updated, err := a.repo.AddToCart(ctx, cartID, input)
	if err != nil {
		return nil, err
	}
	a.Replace(updated)
	return updated.Clone(), nil
}

// UpdateQuantity sets a line item's quantity. Zero is defined as
// remove; negative quantities are rejected.
func (a *Aggregate) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	cartID, err := a.currentID()
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		return a.removeByID(ctx, cartID, itemID)
	}
	updated, err := a.repo.UpdateItemQuantity(ctx, cartID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	a.Replace(updated)
	return updated.Clone(), nil
}

// RemoveItem deletes a line item. Removing an already-absent item is
// not an error.
func (a *Aggregate) RemoveItem(ctx context.Context, itemID uuid.UUID) (*Cart, error) {
	cartID, err := a.currentID()
	if err != nil {
		return nil, err
	}
	return a.removeByID(ctx, cartID, itemID)
}

func (a *Aggregate) removeByID(ctx context.Context, cartID, itemID uuid.UUID) (*Cart, error) {
	updated, err := a.repo.RemoveFromCart(ctx, cartID, itemID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			// Already gone; the current view is still authoritative.
			return a.Current(), nil
		}
		return nil, err
	}
	a.Replace(updated)
	return updated.Clone(), nil
}

// Clear empties the cart while preserving its identity.
func (a *Aggregate) Clear(ctx context.Context) (*Cart, error) {
	cartID, err := a.currentID()
	if err != nil {
		return nil, err
	}
	updated, err := a.repo.ClearCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	a.Replace(updated)
	return updated.Clone(), nil
}

// Reset discards the tracked cart and loads a fresh one for the same
// scope. Used after a completed sale.
func (a *Aggregate) Reset(ctx context.Context) (*Cart, error) {
	a.mu.RLock()
	current := a.cart
	a.mu.RUnlock()
	if current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no cart loaded")
	}
	return a.GetOrCreate(ctx, current.Scope, true)
}

func (a *Aggregate) currentID() (uuid.UUID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.cart == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "no cart loaded")
	}
	return a.cart.ID, nil
}
