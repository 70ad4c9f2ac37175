package usecase

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	nonPriceCharsRegex = regexp.MustCompile(`[^0-9.]`)
	// leading decimal literal; everything after it is ignored
	priceLiteralRegex = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)`)
)

// ParsePrice converts free-form price text into a non-negative amount.
// Every character other than a digit or '.' is removed, then the longest
// leading decimal literal is parsed. The dot is always the decimal point,
// so "Rp 12.500" is 12.5 and "12500" is 12500. Text without any literal
// yields zero.
func ParsePrice(s string) decimal.Decimal {
	cleaned := nonPriceCharsRegex.ReplaceAllString(s, "")
	literal := priceLiteralRegex.FindString(cleaned)
	if literal == "" {
		return decimal.Zero
	}
	literal = strings.TrimSuffix(literal, ".")

	d, err := decimal.NewFromString(literal)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatPrice renders a price the way exports write it: the shortest
// decimal form, "0" for zero.
func FormatPrice(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	return d.String()
}
