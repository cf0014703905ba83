package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const rupee = "₹"

// Placeholder is shown for absent values.
const Placeholder = "—"

// en-IN groups lakhs and crores: 1,23,45,678.
var indian = language.MustParse("en-IN")

// Currency renders amount with Indian digit grouping (₹1,23,456.5). Zero is ₹0.
func Currency(amount float64) string {
	if amount == 0 || math.IsNaN(amount) {
		return rupee + "0"
	}
	return rupee + groupIN(amount, 3)
}

// Income is Currency with whole rupees, and a placeholder for no income.
func Income(amount float64) string {
	if amount == 0 || math.IsNaN(amount) {
		return Placeholder
	}
	return rupee + groupIN(amount, 0)
}

func groupIN(amount float64, decimals int) string {
	return message.NewPrinter(indian).Sprint(number.Decimal(amount, number.MaxFractionDigits(decimals)))
}
