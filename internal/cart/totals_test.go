package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotalsSubtotalIsSumOfLines(t *testing.T) {
	items := []Item{
		{Quantity: 2, UnitPrice: dec("10.00")},
		{Quantity: 1, UnitPrice: dec("35.00")},
		{Quantity: 3, UnitPrice: dec("4.99")},
	}

	totals := ComputeTotals(items, decimal.Zero, decimal.Zero)
	assert.True(t, totals.Subtotal.Equal(dec("69.97")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Total.Equal(dec("69.97")), "total %s", totals.Total)
	assert.False(t, totals.NeedsReconciliation)
}

func TestComputeTotalsTaxAppliesToDiscountedSubtotal(t *testing.T) {
	items := []Item{{Quantity: 1, UnitPrice: dec("100.00")}}

	totals := ComputeTotals(items, dec("20.00"), dec("0.0875"))
	require.True(t, totals.TaxAmount.Equal(dec("7.00")), "tax %s", totals.TaxAmount)
	require.True(t, totals.Total.Equal(dec("87.00")), "total %s", totals.Total)
}

func TestComputeTotalsTaxRoundsToCurrencyPrecision(t *testing.T) {
	// 19.99 * 0.0825 = 1.649175 -> rounds to 1.65, not truncated to 1.64.
	items := []Item{{Quantity: 1, UnitPrice: dec("19.99")}}

	totals := ComputeTotals(items, decimal.Zero, dec("0.0825"))
	require.True(t, totals.TaxAmount.Equal(dec("1.65")), "tax %s", totals.TaxAmount)
}

func TestComputeTotalsClampsNegativeTotal(t *testing.T) {
	items := []Item{{Quantity: 1, UnitPrice: dec("10.00")}}

	totals := ComputeTotals(items, dec("25.00"), dec("0.10"))
	assert.True(t, totals.Total.IsZero(), "total %s", totals.Total)
	assert.True(t, totals.NeedsReconciliation, "clamped total must be flagged for reconciliation")
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, decimal.Zero, dec("0.10"))
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
	assert.False(t, totals.NeedsReconciliation)
}
