package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the precision carried by every settled amount.
const CurrencyPlaces = 2

// Round normalizes an amount to currency precision using standard
// half-away-from-zero rounding, never truncation.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPlaces)
}

// Zero returns a currency zero.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// FromCents converts an integer cent amount into a decimal dollar value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -CurrencyPlaces)
}

// Cents converts a decimal dollar amount into whole cents after rounding.
func Cents(amount decimal.Decimal) int64 {
	return Round(amount).Shift(CurrencyPlaces).IntPart()
}

// Format renders an amount as a display string, e.g. "$12.37".
func Format(amount decimal.Decimal) string {
	rounded := Round(amount)
	if rounded.Sign() < 0 {
		return fmt.Sprintf("-$%s", rounded.Neg().StringFixed(CurrencyPlaces))
	}
	return fmt.Sprintf("$%s", rounded.StringFixed(CurrencyPlaces))
}

// IsNegative reports whether the amount is below zero.
func IsNegative(amount decimal.Decimal) bool {
	return amount.Sign() < 0
}
