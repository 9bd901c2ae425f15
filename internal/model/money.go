package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest value a NUMERIC(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// Exponent limits for accepted amounts. MaxAmount has 12 integer digits,
// and nothing finer than 1e-32 survives rounding to cents.
const (
	maxAmountIntDigits = 12
	minAmountExponent  = -32
)

// Amount bound errors.
var (
	ErrAmountTooLarge   = errors.New("amount is too large")
	ErrAmountTooPrecise = errors.New("amount has too many decimal places")
)

// CheckAmountBounds rejects amounts whose magnitude exceeds MaxAmount or
// whose exponent is too small to mean anything in cents. It reads only the
// exponent and digit count before comparing, so inputs like 1e5000000 are
// refused without being expanded.
func CheckAmountBounds(d decimal.Decimal) error {
	exp := int(d.Exponent())
	switch {
	case exp > maxAmountIntDigits:
		return ErrAmountTooLarge
	case exp < minAmountExponent:
		return ErrAmountTooPrecise
	case d.IsZero():
		return nil
	}

	switch mag := d.NumDigits() + exp; {
	case mag > maxAmountIntDigits:
		return ErrAmountTooLarge
	case mag == maxAmountIntDigits && d.Abs().GreaterThan(MaxAmount):
		return ErrAmountTooLarge
	}
	return nil
}
