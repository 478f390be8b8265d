package checkout

import (
	"context"
	"time"

	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	"github.com/angelmondragon/packfinderz-pos/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionInfo is the audit context attached to every settlement call.
// Nil register/user is legal but degrades traceability.
type SessionInfo struct {
	StoreID    uuid.UUID
	LocationID uuid.UUID
	RegisterID *uuid.UUID
	UserID     *uuid.UUID
}

// Attributed reports whether the session carries register or user attribution.
func (s SessionInfo) Attributed() bool {
	return s.RegisterID != nil || s.UserID != nil
}

// SaleCompletion is the signed receipt returned by a successful settlement.
type SaleCompletion struct {
	OrderNumber   string
	SettledAmount decimal.Decimal
	Method        enums.PaymentMethod
}

// Gateway is the settlement contract. Card has no settlement path here;
// the orchestrator rejects it before this interface is reached.
type Gateway interface {
	SettleCash(ctx context.Context, info SessionInfo, c *cart.Cart, tendered decimal.Decimal, customerName *string) (*SaleCompletion, error)
	SettleInvoice(ctx context.Context, info SessionInfo, c *cart.Cart, customerEmail string, customerName *string, dueDate time.Time) (*SaleCompletion, error)
}
