package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders number with the currency's rounding, separators and symbols
func (c Currency) Format(number decimal.Decimal) string {
	return c.SymbolLeft + formatNumber(number, c.DecimalPlace, c.DecimalPoint, c.ThousandPoint) + c.SymbolRight
}

// formatNumber rounds half away from zero to places and groups the integer
// part by thousands.
func formatNumber(number decimal.Decimal, places int, decimalPoint, thousandPoint string) string {
	if places < 0 {
		places = 0
	}

	fixed := number.Round(int32(places)).StringFixed(int32(places))

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		fixed = fixed[1:]
		if strings.Trim(fixed, "0.") != "" {
			sign = "-"
		}
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(thousandPoint)
		}
		b.WriteRune(digit)
	}
	if places > 0 {
		b.WriteString(decimalPoint)
		b.WriteString(fracPart)
	}
	return b.String()
}
