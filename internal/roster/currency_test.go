package roster_test

import (
	"testing"

	"github.com/jensholdgaard/player-auction/internal/roster"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		unit   roster.Unit
		places int32
		want   string
	}{
		{name: "base price in lakhs", amount: 2_000_000, unit: roster.Lakh, places: 1, want: "₹20.0L"},
		{name: "increment in lakhs", amount: 500_000, unit: roster.Lakh, places: 1, want: "₹5.0L"},
		{name: "rounds half away from zero", amount: 1_500_000, unit: roster.Crore, places: 1, want: "₹0.2Cr"},
		{name: "budget in crores", amount: 900_000_000, unit: roster.Crore, places: 1, want: "₹90.0Cr"},
		{name: "remaining in crores", amount: 123_456_789, unit: roster.Crore, places: 2, want: "₹12.35Cr"},
		{name: "zero", amount: 0, unit: roster.Lakh, places: 1, want: "₹0.0L"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roster.FormatCurrency(tt.amount, tt.unit, tt.places)
			if got != tt.want {
				t.Errorf("FormatCurrency(%d) = %q, want %q", tt.amount, got, tt.want)
			}
			if again := roster.FormatCurrency(tt.amount, tt.unit, tt.places); again != got {
				t.Errorf("FormatCurrency not reproducible: %q then %q", got, again)
			}
		})
	}
}

func TestLakhsAndCrores(t *testing.T) {
	if got := roster.Lakhs(1_550_000); got != "₹15.5L" {
		t.Errorf("Lakhs() = %q", got)
	}
	if got := roster.Crores(650_000_000, 2); got != "₹65.00Cr" {
		t.Errorf("Crores() = %q", got)
	}
}
