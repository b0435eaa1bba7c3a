// Package money normalizes expense amounts into a trip's base currency.
//
// All amounts are github.com/shopspring/decimal values. A balance whose
// magnitude is at most Epsilon (one cent) is treated as settled.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// BaseScale is the number of decimal places kept after a currency conversion.
const BaseScale = 6

// Epsilon is the tolerance below which a balance counts as zero.
var Epsilon = decimal.New(1, -2)

var one = decimal.NewFromInt(1)

// ToBaseCurrency converts amount into the base currency using exchangeRate.
// A zero or negative rate is a data error, not a debt reversal, so it is
// treated as 1 (no conversion).
func ToBaseCurrency(amount, exchangeRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(Rate(exchangeRate)).Round(BaseScale)
}

// Rate returns exchangeRate, or 1 when it is not positive.
func Rate(exchangeRate decimal.Decimal) decimal.Decimal {
	if !exchangeRate.IsPositive() {
		return one
	}
	return exchangeRate
}

// IsSettled reports whether |d| ≤ Epsilon.
func IsSettled(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Epsilon)
}

// RoundCents rounds d to two decimal places, half away from zero.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateCurrency checks that code is an ISO 4217 currency and returns its
// canonical form.
func ValidateCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return unit.String(), nil
}
