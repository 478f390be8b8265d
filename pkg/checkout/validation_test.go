package checkout

import (
	"testing"

	pkgerrors "github.com/angelmondragon/packfinderz-pos/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTenderAcceptsExactTotal(t *testing.T) {
	total := decimal.RequireFromString("55.00")
	assert.NoError(t, ValidateTender(total, total))
}

func TestValidateTenderRejectsOneCentShort(t *testing.T) {
	err := ValidateTender(decimal.RequireFromString("54.99"), decimal.RequireFromString("55.00"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds))

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	detail, ok := typed.Details().(TenderShortfallDetail)
	require.True(t, ok, "expected shortfall details, got %T", typed.Details())
	assert.Equal(t, "$0.01", detail.Shortfall)
	assert.Equal(t, "$54.99", detail.TenderedAmount)
	assert.Equal(t, "$55.00", detail.TotalAmount)
}

func TestValidateTenderAcceptsOverpayment(t *testing.T) {
	assert.NoError(t, ValidateTender(decimal.RequireFromString("100.00"), decimal.RequireFromString("55.00")))
}

func TestValidateInvoiceEmailShallowCheck(t *testing.T) {
	cases := []struct {
		email string
		valid bool
	}{
		{"a@b.c", true},
		{"billing@dispensary.example", true},
		{"  padded@ok.example  ", true},
		{"", false},
		{"   ", false},
		{"not-an-email", false},
	}
	for _, tc := range cases {
		err := ValidateInvoiceEmail(tc.email)
		if tc.valid {
			assert.NoError(t, err, "email %q", tc.email)
			continue
		}
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "email %q: %v", tc.email, err)
	}
}
