package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an expense amount is missing, malformed,
// or not strictly positive once rounded to cents.
var ErrInvalidAmount = errors.New("amount must be a positive number")

// EpsilonCents is the tolerance below which a balance counts as settled.
const EpsilonCents = 1

// Epsilon is EpsilonCents expressed in currency units (0.01).
var Epsilon = decimal.New(EpsilonCents, -2)

// ToCents converts d to integer cents, rounding half away from zero.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// balancePrecision is the number of decimal places kept for net balances
// and shares, well below the one cent settlement tolerance.
const balancePrecision = 10

// fromShareUnits converts an amount counted in 1/n cent units to currency,
// rounded to balancePrecision places.
func fromShareUnits(units, n int64) decimal.Decimal {
	return decimal.New(units, -2).DivRound(decimal.NewFromInt(n), balancePrecision)
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCents renders cents with exactly two decimals, e.g. 3000 -> "30.00".
func FormatCents(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// FormatAmount renders d rounded to two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseAmount parses a positive monetary amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// The result is rounded half away from zero to whole cents. Zero, negative,
// and sub-cent values are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0.001") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := ToCents(d)
	if cents <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromCents(cents), nil
}
