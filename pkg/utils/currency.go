// Package utils provides number formatting, parsing and rounding helpers.
package utils

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "€"

var printer = message.NewPrinter(language.English)

// FormatCurrency formats an amount with thousands grouping, e.g. "€1,235" or "€1,234.56".
// Negative amounts carry the sign before the symbol.
func FormatCurrency(amount float64, symbol string, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	negative := amount < 0
	amount = math.Abs(amount)

	formatted := printer.Sprintf(fmt.Sprintf("%%.%df", decimals), amount)
	if negative && strings.Trim(formatted, "0.,") != "" {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// FormatNumber groups thousands without a currency symbol.
func FormatNumber(amount float64, decimals int) string {
	return FormatCurrency(amount, "", decimals)
}

// FormatCompact formats large amounts in thousands, e.g. 150000 → "€150K".
func FormatCompact(amount float64, symbol string) string {
	if math.Abs(amount) >= 1e3 {
		return FormatCurrency(amount/1e3, symbol, 0) + "K"
	}
	return FormatCurrency(amount, symbol, 0)
}
