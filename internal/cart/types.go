package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scope addresses at most one open cart: a register location plus an
// optional customer (nil for walk-in/guest sales).
type Scope struct {
	StoreID    uuid.UUID
	LocationID uuid.UUID
	CustomerID *uuid.UUID
}

// Item is one cart line. Price and tier data are snapshotted at
// add-time, not recomputed from the live catalog.
type Item struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	VariantID    *uuid.UUID
	InventoryID  *uuid.UUID
	Quantity     int
	UnitPrice    decimal.Decimal
	TierLabel    *string
	TierQuantity *float64
}

// LineSubtotal returns quantity times unit price.
func (i Item) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the pending-purchase aggregate for a scope. Items keep the
// backend's display order; order is irrelevant to pricing.
type Cart struct {
	ID             uuid.UUID
	Scope          Scope
	Items          []Item
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Totals returns the derived totals for the cart's current items.
func (c *Cart) Totals() Totals {
	return ComputeTotals(c.Items, c.DiscountAmount, c.TaxRate)
}

// Clone returns a deep copy so holders never share item slices.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	dup := *c
	dup.Items = make([]Item, len(c.Items))
	copy(dup.Items, c.Items)
	if c.Scope.CustomerID != nil {
		id := *c.Scope.CustomerID
		dup.Scope.CustomerID = &id
	}
	return &dup
}

// AddItemInput carries the payload for an add-to-cart mutation. A nil
// UnitPrice delegates price resolution to the backend catalog.
type AddItemInput struct {
	ProductID    uuid.UUID
	Quantity     int
	UnitPrice    *decimal.Decimal
	TierLabel    *string
	TierQuantity *float64
	VariantID    *uuid.UUID
	InventoryID  *uuid.UUID
}
