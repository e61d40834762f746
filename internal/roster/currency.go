package roster

import (
	"github.com/shopspring/decimal"
)

// Unit is a large currency denomination amounts are displayed in.
type Unit struct {
	Divisor int64
	Suffix  string
}

var (
	Lakh  = Unit{Divisor: 100_000, Suffix: "L"}
	Crore = Unit{Divisor: 10_000_000, Suffix: "Cr"}
)

const rupee = "₹"

// FormatCurrency renders amount in unit with the given number of decimal
// places, e.g. FormatCurrency(2500000, Lakh, 1) == "₹25.0L". Rounding is half
// away from zero on exact decimal arithmetic, so equal inputs always format
// identically.
func FormatCurrency(amount int64, unit Unit, places int32) string {
	v := decimal.NewFromInt(amount).Div(decimal.NewFromInt(unit.Divisor))
	return rupee + v.StringFixed(places) + unit.Suffix
}

// Lakhs formats player-sized amounts: one decimal place in lakhs.
func Lakhs(amount int64) string {
	return FormatCurrency(amount, Lakh, 1)
}

// Crores formats budget-sized amounts in crores.
func Crores(amount int64, places int32) string {
	return FormatCurrency(amount, Crore, places)
}
