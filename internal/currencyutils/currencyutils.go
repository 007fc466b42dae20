// Package currencyutils normalizes amount strings typed or extracted in mixed
// locales into a form shopspring/decimal can parse.
package currencyutils

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// NormalizeAmount converts raw into a canonical decimal string.
//
//  1. Whitespace and "$" are removed.
//  2. Without a comma the value is returned as is.
//  3. With both "." and ",", the last comma is the decimal separator and any
//     dot before it is a thousands separator.
//  4. With only commas, the comma is the decimal separator.
//
// US-formatted input such as "1,234.56" is not recognized by rule 3 and comes
// out as "1.234.56", which decimal parsing rejects.
func NormalizeAmount(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '$' {
			return -1
		}
		return r
	}, raw)

	if !strings.Contains(cleaned, ",") {
		return cleaned
	}

	if strings.Contains(cleaned, ".") {
		cut := strings.LastIndex(cleaned, ",")
		integer := strings.ReplaceAll(cleaned[:cut], ".", "")
		return integer + "." + cleaned[cut+1:]
	}

	return strings.ReplaceAll(cleaned, ",", ".")
}

// ParseAmount normalizes raw and parses it as a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	normalized := NormalizeAmount(raw)
	if normalized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", raw, err)
	}
	return amount, nil
}

// FormatAmount renders amount with two decimals and an optional currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "":
		return formatted
	case "MXN", "USD":
		if amount.IsNegative() {
			return "-$" + amount.Abs().StringFixed(2)
		}
		return "$" + formatted
	default:
		return currency + " " + formatted
	}
}
