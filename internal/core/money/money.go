// Package money provides fixed-precision monetary arithmetic.
// All amounts are decimal.Decimal internally; binary floating point never
// enters a calculation. Results of Add/Sub/PercentageOf are rounded to
// 2 fractional digits, so unrounded intermediates never accumulate
// across calls.
package money

import (
	"math"

	"github.com/shopspring/decimal"

	"mezgeb/internal/core/apperror"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Scale is the number of fractional digits carried by rounded amounts (cents).
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// FromInt creates a Money value from whole currency units.
func FromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// Parse creates a Money value from a decimal string.
// This is the preferred constructor for monetary values.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.NewValidation("invalid monetary amount").
			WithDetail("value", s).
			WithCause(err)
	}
	return d, nil
}

// MustParse creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustParse(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromFloat converts a float64 amount, rejecting NaN and infinities.
// Prefer Parse for values that originate as text.
func FromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, apperror.NewValidation("amount must be a finite number").
			WithDetail("value", f)
	}
	return decimal.NewFromFloat(f), nil
}

// Round rounds to 2 decimal places using round-half-away-from-zero,
// the accounting convention. Round is idempotent.
func Round(a Money) Money {
	return a.Round(Scale)
}

// Add returns Round(a + b).
func Add(a, b Money) Money {
	return Round(a.Add(b))
}

// Sub returns Round(a - b). Negative results are allowed (credits);
// callers interpret the sign.
func Sub(a, b Money) Money {
	return Round(a.Sub(b))
}

// PercentageOf returns Round(amount * pct / 100).
func PercentageOf(amount Money, pct decimal.Decimal) Money {
	return Round(amount.Mul(pct).Div(hundred))
}
