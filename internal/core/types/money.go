// Package types provides common type aliases and monetary helpers.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors: balances are
// accumulated over arbitrarily long movement lists and must stay
// cent-exact. Values are rounded to two places where they enter
// persistence, so stored rows and API responses always agree.
type Money = decimal.Decimal

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds half away from zero to two decimal places. Services call
// it on values headed for NUMERIC(14,2) columns so the row and the value
// echoed back to the client are identical.
func Round2(m Money) Money {
	return m.Round(2)
}
