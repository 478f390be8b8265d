package checkout

import (
	"github.com/shopspring/decimal"
)

var ten = decimal.NewFromInt(10)

// ChangeDue returns tendered minus total. Callers only display it when
// non-negative; submission below total is rejected before settlement.
func ChangeDue(tendered, total decimal.Decimal) decimal.Decimal {
	return tendered.Sub(total)
}

// SuggestedTenders returns the next three ascending multiples of ten at
// or above the total, a register UX affordance for quick cash entry.
func SuggestedTenders(total decimal.Decimal) [3]decimal.Decimal {
	base := total.Div(ten).Ceil().Mul(ten)
	return [3]decimal.Decimal{
		base,
		base.Add(ten),
		base.Add(ten).Add(ten),
	}
}
