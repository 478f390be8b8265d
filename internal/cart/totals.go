package cart

import (
	"github.com/angelmondragon/packfinderz-pos/pkg/money"
	"github.com/shopspring/decimal"
)

// Totals is always derived from items plus cart-level discount and tax
// rate; it is never mutated independently.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal

	// NeedsReconciliation is set when the discount exceeded the
	// subtotal and the total was clamped to zero. The backend owns
	// fixing the discount; the register never shows negative currency.
	NeedsReconciliation bool
}

// ComputeTotals derives cart totals. Tax applies to the discounted
// subtotal and is rounded to currency precision before being added.
func ComputeTotals(items []Item, discount, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineSubtotal())
	}

	if discount.Sign() < 0 {
		discount = decimal.Zero
	}
	if taxRate.Sign() < 0 {
		taxRate = decimal.Zero
	}

	taxable := subtotal.Sub(discount)
	clamped := false
	if taxable.Sign() < 0 {
		taxable = decimal.Zero
		clamped = true
	}

	taxAmount := money.Round(taxable.Mul(taxRate))
	total := subtotal.Sub(discount).Add(taxAmount)
	if total.Sign() < 0 {
		total = decimal.Zero
		clamped = true
	}

	return Totals{
		Subtotal:            subtotal,
		DiscountAmount:      discount,
		TaxRate:             taxRate,
		TaxAmount:           taxAmount,
		Total:               total,
		NeedsReconciliation: clamped,
	}
}
