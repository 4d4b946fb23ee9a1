// Package money parses display-formatted entry fees into typed amounts.
package money

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrInvalidFee = errors.New("invalid entry fee")

// Amount is a decimal value with an ISO-ish currency code ("" when unknown).
type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency,omitempty"`
}

func (a Amount) IsZero() bool {
	return a.Value.IsZero()
}

func (a Amount) String() string {
	if a.IsZero() {
		return "Free"
	}
	if a.Currency == "" {
		return a.Value.StringFixed(2)
	}
	return a.Value.StringFixed(2) + " " + a.Currency
}

var currencySymbols = map[string]string{
	"₹": "INR",
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₽": "RUB",
	"₸": "KZT",
}

// ParseFee converts an entry_fee display string to an Amount.
// Empty strings and "free" (any case) are zero. Accepted forms: "0", "₹50", "$10.50",
// "50 INR", "INR 50", "1,000".
func ParseFee(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "free") {
		return Amount{Value: decimal.Zero}, nil
	}

	var currency string
	for sym, code := range currencySymbols {
		if strings.HasPrefix(s, sym) {
			currency = code
			s = strings.TrimSpace(strings.TrimPrefix(s, sym))
			break
		}
	}

	if currency == "" {
		fields := strings.Fields(s)
		if len(fields) == 2 {
			switch {
			case isCurrencyCode(fields[0]):
				currency, s = strings.ToUpper(fields[0]), fields[1]
			case isCurrencyCode(fields[1]):
				currency, s = strings.ToUpper(fields[1]), fields[0]
			}
		}
	}

	s = strings.ReplaceAll(s, ",", "")
	value, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidFee, s)
	}
	if value.IsNegative() {
		return Amount{}, fmt.Errorf("%w: negative amount %s", ErrInvalidFee, value)
	}
	return Amount{Value: value, Currency: currency}, nil
}

// IsFree reports whether a tournament with the given entry fee can be joined without payment.
// A nil fee is free. An unparseable fee is treated as paid.
func IsFree(fee *string) bool {
	if fee == nil {
		return true
	}
	a, err := ParseFee(*fee)
	if err != nil {
		return false
	}
	return a.IsZero()
}

// PaymentAmount returns the amount to charge for the fee. Unparseable fees yield
// an error so the caller can fall back to a pending registration.
func PaymentAmount(fee *string) (decimal.Decimal, error) {
	if fee == nil {
		return decimal.Zero, nil
	}
	a, err := ParseFee(*fee)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Value, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
