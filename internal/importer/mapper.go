// Package importer turns uploaded spreadsheets into auction players.
//
// Decoding and mapping are separate steps: Decode produces loosely typed
// rows keyed by header text, and Mapper.Map coerces each row into a
// roster.Player using a fixed table of accepted column names.
package importer

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jensholdgaard/player-auction/internal/roster"
)

// Row is one decoded spreadsheet row keyed by its column header.
type Row map[string]any

// Accepted header spellings per field. Matching ignores case and
// surrounding whitespace, so "NAME" also resolves to name.
var (
	nameAliases      = []string{"Name", "name"}
	skillAliases     = []string{"Skill", "skill"}
	basePriceAliases = []string{"Base Price", "base price", "basePrice", "base_price"}
)

// Mapper converts decoded rows into players.
type Mapper struct {
	// DefaultBasePrice is used when no price column holds a usable number.
	DefaultBasePrice int64
	// Photo is the placeholder image given to every imported player.
	Photo string
	// NewID generates player ids. Defaults to uuid.NewString.
	NewID func() string
}

// Result is the outcome of mapping a batch of rows.
type Result struct {
	Players  []roster.Player `json:"players"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Map coerces every row into a player. Rows are never rejected; fields that
// cannot be read fall back to their defaults.
func (m Mapper) Map(rows []Row) Result {
	newID := m.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	res := Result{Players: make([]roster.Player, 0, len(rows))}
	for i, row := range rows {
		line := i + 1
		p := roster.Player{
			ID:        newID(),
			Name:      firstString(row, nameAliases),
			Skill:     roster.Batsman,
			BasePrice: m.DefaultBasePrice,
			Status:    roster.Unsold,
			Photo:     m.Photo,
		}

		if raw := firstString(row, skillAliases); raw != "" {
			if skill, ok := roster.ParseSkill(raw); ok {
				p.Skill = skill
			} else {
				p.Skill = roster.Skill(raw)
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("row %d: unknown skill %q kept as written", line, raw))
			}
		}

		if price, ok := firstAmount(row, basePriceAliases); ok {
			p.BasePrice = price
		} else {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("row %d: no usable base price, using %d", line, m.DefaultBasePrice))
		}

		res.Players = append(res.Players, p)
	}
	return res
}

// values returns the row's values for the given aliases, in alias order.
// Headers that match the same alias are visited in sorted order.
func values(row Row, aliases []string) []any {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out []any
	for _, alias := range aliases {
		for _, k := range keys {
			if strings.EqualFold(strings.TrimSpace(k), alias) {
				out = append(out, row[k])
			}
		}
	}
	return out
}

func firstString(row Row, aliases []string) string {
	for _, v := range values(row, aliases) {
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	return ""
}

func firstAmount(row Row, aliases []string) (int64, bool) {
	for _, v := range values(row, aliases) {
		if amount, ok := coerceAmount(v); ok {
			return amount, true
		}
	}
	return 0, false
}

// maxAmount bounds coerced amounts to what fits in an int64. maxExponent
// rejects inputs like "1e30000000" or "1e-30000000" before rounding
// expands them.
var (
	maxAmount   = decimal.NewFromInt(math.MaxInt64)
	maxExponent = int32(18)
)

// coerceAmount reads v as a non-negative whole amount. Strings may carry
// thousands separators or an exponent ("2,000,000", "1.5e6").
func coerceAmount(v any) (int64, bool) {
	var d decimal.Decimal
	switch n := v.(type) {
	case int:
		d = decimal.NewFromInt(int64(n))
	case int64:
		d = decimal.NewFromInt(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		d = decimal.NewFromFloat(n)
	case decimal.Decimal:
		d = n
	case string:
		s := strings.NewReplacer(",", "", "_", "", " ", "").Replace(strings.TrimSpace(n))
		if s == "" {
			return 0, false
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
		d = parsed
	default:
		return 0, false
	}
	if d.IsNegative() || d.Exponent() > maxExponent || d.Exponent() < -maxExponent ||
		d.GreaterThan(maxAmount) {
		return 0, false
	}
	return d.Round(0).IntPart(), true
}
