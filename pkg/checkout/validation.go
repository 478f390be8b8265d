package checkout

import (
	"strings"

	pkgerrors "github.com/angelmondragon/packfinderz-pos/pkg/errors"
	"github.com/angelmondragon/packfinderz-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// TenderShortfallDetail exposes the data returned when a cash tender is rejected.
type TenderShortfallDetail struct {
	TenderedAmount string `json:"tendered_amount"`
	TotalAmount    string `json:"total_amount"`
	Shortfall      string `json:"shortfall"`
}

// ValidateTender ensures the tendered cash covers the cart total.
// Tendering the exact total is valid and yields zero change.
func ValidateTender(tendered, total decimal.Decimal) error {
	if tendered.GreaterThanOrEqual(total) {
		return nil
	}
	shortfall := total.Sub(tendered)
	return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "tendered amount is below the cart total").WithDetails(TenderShortfallDetail{
		TenderedAmount: money.Format(tendered),
		TotalAmount:    money.Format(total),
		Shortfall:      money.Format(shortfall),
	})
}

// ValidateInvoiceEmail applies the intentionally shallow address check:
// non-empty and contains "@". Full RFC validation is not wanted here;
// the billing backend re-validates before sending anything.
func ValidateInvoiceEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" || !strings.Contains(trimmed, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is not a valid address")
	}
	return nil
}
