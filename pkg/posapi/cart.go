package posapi

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type cartItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	VariantID    *uuid.UUID      `json:"variant_id,omitempty"`
	InventoryID  *uuid.UUID      `json:"inventory_id,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TierLabel    *string         `json:"tier_label,omitempty"`
	TierQuantity *float64        `json:"tier_quantity,omitempty"`
}

type cartDTO struct {
	ID             uuid.UUID       `json:"id"`
	StoreID        uuid.UUID       `json:"store_id"`
	LocationID     uuid.UUID       `json:"location_id"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	Items          []cartItemDTO   `json:"items"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (d cartDTO) toDomain() *cart.Cart {
	items := make([]cart.Item, len(d.Items))
	for i, item := range d.Items {
		items[i] = cart.Item{
			ID:           item.ID,
			ProductID:    item.ProductID,
			VariantID:    item.VariantID,
			InventoryID:  item.InventoryID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TierLabel:    item.TierLabel,
			TierQuantity: item.TierQuantity,
		}
	}
	return &cart.Cart{
		ID: d.ID,
		Scope: cart.Scope{
			StoreID:    d.StoreID,
			LocationID: d.LocationID,
			CustomerID: d.CustomerID,
		},
		Items:          items,
		DiscountAmount: d.DiscountAmount,
		TaxRate:        d.TaxRate,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type getOrCreateRequest struct {
	StoreID    uuid.UUID  `json:"store_id"`
	LocationID uuid.UUID  `json:"location_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	FreshStart bool       `json:"fresh_start"`
}

type addItemRequest struct {
	ProductID    uuid.UUID        `json:"product_id"`
	Quantity     int              `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	TierLabel    *string          `json:"tier_label,omitempty"`
	TierQuantity *float64         `json:"tier_quantity,omitempty"`
	VariantID    *uuid.UUID       `json:"variant_id,omitempty"`
	InventoryID  *uuid.UUID       `json:"inventory_id,omitempty"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetOrCreateCart returns the scope's open cart, creating one if needed.
func (c *Client) GetOrCreateCart(ctx context.Context, scope cart.Scope, freshStart bool) (*cart.Cart, error) {
	req := getOrCreateRequest{
		StoreID:    scope.StoreID,
		LocationID: scope.LocationID,
		CustomerID: scope.CustomerID,
		FreshStart: freshStart,
	}
	var dto cartDTO
	if err := c.do(ctx, http.MethodPost, "/carts/get-or-create", req, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// AddToCart appends a line item and returns the updated cart.
func (c *Client) AddToCart(ctx context.Context, cartID uuid.UUID, input cart.AddItemInput) (*cart.Cart, error) {
	req := addItemRequest{
		ProductID:    input.ProductID,
		Quantity:     input.Quantity,
		UnitPrice:    input.UnitPrice,
		TierLabel:    input.TierLabel,
		TierQuantity: input.TierQuantity,
		VariantID:    input.VariantID,
		InventoryID:  input.InventoryID,
	}
	var dto cartDTO
	if err := c.do(ctx, http.MethodPost, pathf("/carts/%s/items", cartID), req, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// UpdateItemQuantity sets a line item's quantity and returns the updated cart.
func (c *Client) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*cart.Cart, error) {
	var dto cartDTO
	if err := c.do(ctx, http.MethodPatch, pathf("/carts/%s/items/%s", cartID, itemID), updateQuantityRequest{Quantity: quantity}, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// RemoveFromCart deletes a line item and returns the updated cart.
func (c *Client) RemoveFromCart(ctx context.Context, cartID, itemID uuid.UUID) (*cart.Cart, error) {
	var dto cartDTO
	if err := c.do(ctx, http.MethodDelete, pathf("/carts/%s/items/%s", cartID, itemID), nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// ClearCart empties the cart while preserving its identity.
func (c *Client) ClearCart(ctx context.Context, cartID uuid.UUID) (*cart.Cart, error) {
	var dto cartDTO
	if err := c.do(ctx, http.MethodPost, pathf("/carts/%s/clear", cartID), nil, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}
