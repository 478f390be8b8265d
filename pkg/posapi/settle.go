package posapi

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/packfinderz-pos/internal/cart"
	"github.com/angelmondragon/packfinderz-pos/internal/checkout"
	"github.com/angelmondragon/packfinderz-pos/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type sessionInfoDTO struct {
	StoreID    uuid.UUID  `json:"store_id"`
	LocationID uuid.UUID  `json:"location_id"`
	RegisterID *uuid.UUID `json:"register_id,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
}

func sessionInfoToDTO(info checkout.SessionInfo) sessionInfoDTO {
	return sessionInfoDTO{
		StoreID:    info.StoreID,
		LocationID: info.LocationID,
		RegisterID: info.RegisterID,
		UserID:     info.UserID,
	}
}

type settleCashRequest struct {
	Session        sessionInfoDTO  `json:"session"`
	CartID         uuid.UUID       `json:"cart_id"`
	TenderedAmount decimal.Decimal `json:"tendered_amount"`
	CustomerName   *string         `json:"customer_name,omitempty"`
}

type settleInvoiceRequest struct {
	Session       sessionInfoDTO `json:"session"`
	CartID        uuid.UUID      `json:"cart_id"`
	CustomerEmail string         `json:"customer_email"`
	CustomerName  *string        `json:"customer_name,omitempty"`
	DueDate       time.Time      `json:"due_date"`
}

type saleCompletionDTO struct {
	OrderNumber   string              `json:"order_number"`
	SettledAmount decimal.Decimal     `json:"settled_amount"`
	Method        enums.PaymentMethod `json:"method"`
}

func (d saleCompletionDTO) toDomain() *checkout.SaleCompletion {
	return &checkout.SaleCompletion{
		OrderNumber:   d.OrderNumber,
		SettledAmount: d.SettledAmount,
		Method:        d.Method,
	}
}

// SettleCash finalizes the cart as a cash sale and returns the receipt.
func (c *Client) SettleCash(ctx context.Context, info checkout.SessionInfo, cartRecord *cart.Cart, tendered decimal.Decimal, customerName *string) (*checkout.SaleCompletion, error) {
	req := settleCashRequest{
		Session:        sessionInfoToDTO(info),
		CartID:         cartRecord.ID,
		TenderedAmount: tendered,
		CustomerName:   customerName,
	}
	var dto saleCompletionDTO
	if err := c.do(ctx, http.MethodPost, "/checkout/cash", req, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// SettleInvoice finalizes the cart against a billing invoice.
func (c *Client) SettleInvoice(ctx context.Context, info checkout.SessionInfo, cartRecord *cart.Cart, customerEmail string, customerName *string, dueDate time.Time) (*checkout.SaleCompletion, error) {
	req := settleInvoiceRequest{
		Session:       sessionInfoToDTO(info),
		CartID:        cartRecord.ID,
		CustomerEmail: customerEmail,
		CustomerName:  customerName,
		DueDate:       dueDate,
	}
	var dto saleCompletionDTO
	if err := c.do(ctx, http.MethodPost, "/checkout/invoice", req, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}
