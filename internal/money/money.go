// Package money converts between stored minor-unit amounts and the major
// units people type and read. Every conversion in the application goes
// through here.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// minorPerMajor is the number of minor units (cents, öre) per major unit.
const minorPerMajor = 100

// MaxAmount is the largest amount, in minor units, accepted for a goal
// target or a contribution. It is below 2^53, so every accepted amount is
// exact as a float64 too.
const MaxAmount int64 = 100_000_000_000_000

var (
	// ErrInvalidAmount is returned for input that is not a number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount is returned for zero or negative amounts.
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	// ErrTooPrecise is returned when input has more decimals than the
	// currency's minor unit.
	ErrTooPrecise = errors.New("amount has too many decimal places")
	// ErrTooLarge is returned for amounts above MaxAmount.
	ErrTooLarge = errors.New("amount is too large")
)

// ParseMajor parses user input such as "250", "250.50" or "250,50" into a
// positive amount of minor units.
func ParseMajor(input string) (int64, error) {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}

	minor := d.Mul(decimal.NewFromInt(minorPerMajor))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, ErrTooPrecise
	}
	if !minor.IsPositive() {
		return 0, ErrNonPositiveAmount
	}
	if minor.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return 0, ErrTooLarge
	}

	return minor.IntPart(), nil
}

// ToMajor returns the major-unit value of a minor-unit amount.
func ToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// Format renders a minor-unit amount with two decimals and the currency
// code, e.g. "1250.50 SEK".
func Format(minor int64, currency string) string {
	return ToMajor(minor).StringFixed(2) + " " + currency
}

// FormatRate renders a fractional minor-unit rate (such as a weekly pace)
// rounded to whole minor units.
func FormatRate(minor float64, currency string) string {
	return Format(decimal.NewFromFloat(minor).Round(0).IntPart(), currency)
}
