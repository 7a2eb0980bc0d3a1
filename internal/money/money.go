// Package money converts between the whole-unit amounts stored on orders and
// the minor units the payment gateway expects.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitsPerMajor is the gateway's subunit factor (kobo, pesewas, centimes).
const MinorUnitsPerMajor = 100

var hundred = decimal.NewFromInt(100)

// ToMinor converts a whole-unit amount into gateway minor units.
func ToMinor(major int64) int64 {
	return decimal.NewFromInt(major).Mul(decimal.NewFromInt(MinorUnitsPerMajor)).IntPart()
}

// FromMinor converts gateway minor units back into whole units. Fractions are
// reported as an error since orders only carry whole units.
func FromMinor(minor int64) (int64, error) {
	d := decimal.NewFromInt(minor).Div(decimal.NewFromInt(MinorUnitsPerMajor))
	if !d.IsInteger() {
		return 0, fmt.Errorf("amount %d minor units is not a whole currency amount", minor)
	}
	return d.IntPart(), nil
}

// PercentageOf returns floor(amount * pct / 100) in whole units.
func PercentageOf(amount int64, pct int) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	if pct > 100 {
		pct = 100
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(hundred).
		Floor().
		IntPart()
}

// Format renders a whole-unit amount with a thin space thousands separator,
// e.g. 36000 XOF -> "36 000 XOF".
func Format(amount int64, currency string) string {
	s := decimal.NewFromInt(amount).String()
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, s[i])
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return fmt.Sprintf("%s %s", out, currency)
}
