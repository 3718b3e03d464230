// Package money converts between external decimal-string amounts and the
// engine's fixed-point representation in minor units (cents). All budget
// arithmetic happens on integers; the decimal form exists only at the
// import/display boundary.
package money

import (
	"regexp"

	"github.com/shopspring/decimal"

	apperrors "budgeteer/internal/errors"
)

// Amount is a monetary value in minor units.
type Amount int64

// amountShape matches the only accepted input forms: an optional leading
// minus, an integer part, and zero, one or two fractional digits.
// Scientific notation, thousands separators and longer fractions are
// rejected because they indicate malformed import data.
var amountShape = regexp.MustCompile(`^-?[0-9]+(\.[0-9]{1,2})?$`)

// Decode parses a decimal string into minor units.
//
//	Decode("12.34") -> 1234
//	Decode("12.3")  -> 1230
//	Decode("12")    -> 1200
//	Decode("-0.05") -> -5
func Decode(text string) (Amount, error) {
	if !amountShape.MatchString(text) {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidAmount, "malformed monetary amount: "+text)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidAmount, err)
	}

	// The shape check guarantees at most two fractional digits, so
	// shifting by two yields an exact integer.
	return Amount(d.Shift(2).IntPart()), nil
}

// Encode renders minor units as a decimal string with exactly two
// fractional digits, sign preserved (5 -> "0.05", -5 -> "-0.05").
func Encode(a Amount) string {
	return decimal.New(int64(a), -2).StringFixed(2)
}

// String implements fmt.Stringer.
func (a Amount) String() string { return Encode(a) }
