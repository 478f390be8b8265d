package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the backend cart contract. Every mutation returns the
// authoritative cart state after the write; callers replace their local
// view with it wholesale.
type Repository interface {
	GetOrCreateCart(ctx context.Context, scope Scope, freshStart bool) (*Cart, error)
	AddToCart(ctx context.Context, cartID uuid.UUID, input AddItemInput) (*Cart, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*Cart, error)
	RemoveFromCart(ctx context.Context, cartID, itemID uuid.UUID) (*Cart, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) (*Cart, error)
}
