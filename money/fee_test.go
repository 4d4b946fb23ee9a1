package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseFee(t *testing.T) {
	tests := []struct {
		in       string
		value    string
		currency string
	}{
		{"Free", "0", ""},
		{"free", "0", ""},
		{"", "0", ""},
		{"0", "0", ""},
		{"₹0", "0", "INR"},
		{"$0", "0", "USD"},
		{"₹50", "50", "INR"},
		{"$10.50", "10.5", "USD"},
		{"50 INR", "50", "INR"},
		{"eur 15", "15", "EUR"},
		{"1,000", "1000", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := ParseFee(tt.in)
			require.NoError(t, err)
			assert.True(t, a.Value.Equal(decimal.RequireFromString(tt.value)), "got %s", a.Value)
			assert.Equal(t, tt.currency, a.Currency)
		})
	}
}

func TestParseFeeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"TBD", "₹abc", "-5"} {
		_, err := ParseFee(in)
		assert.ErrorIs(t, err, ErrInvalidFee, in)
	}
}

func TestIsFree(t *testing.T) {
	assert.True(t, IsFree(nil))
	assert.True(t, IsFree(strPtr("Free")))
	assert.True(t, IsFree(strPtr("0")))
	assert.True(t, IsFree(strPtr("₹0")))
	assert.False(t, IsFree(strPtr("₹50")))
	assert.False(t, IsFree(strPtr("TBD")))
}

func TestPaymentAmount(t *testing.T) {
	v, err := PaymentAmount(strPtr("₹50"))
	require.NoError(t, err)
	assert.Equal(t, "50", v.String())

	v, err = PaymentAmount(nil)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	_, err = PaymentAmount(strPtr("TBD"))
	assert.Error(t, err)
}
