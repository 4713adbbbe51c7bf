// Package money provides the fixed-precision amount handling shared by the
// ingestion and serialization layers. Amounts are shopspring decimals
// truncated to four fractional digits at the system boundary; internal
// arithmetic keeps full precision.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept at ingress and output.
const Scale = 4

// Truncate drops fractional digits beyond Scale without rounding.
// Truncation is toward zero for negative values as well, so -0.12349
// becomes -0.1234.
func Truncate(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(Scale)
}

// Parse parses a decimal amount string and truncates it to Scale digits.
// The input is trimmed first; an empty or malformed string is an error.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	return Truncate(d), nil
}

// Format renders an amount for output after boundary truncation. The
// natural scale of the value is kept: 1.5 prints as "1.5", not "1.5000".
func Format(d decimal.Decimal) string {
	return Truncate(d).String()
}
