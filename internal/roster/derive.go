package roster

import (
	"github.com/samber/lo"
)

// RemainingBudget is what the team can still spend.
func RemainingBudget(t Team) int64 {
	return t.TotalBudget - t.SpentBudget
}

// RemainingSlots is how many more players the team can sign.
func RemainingSlots(t Team) int {
	return t.MaxPlayers - t.CurrentPlayers
}

// BudgetUsedPercentage is spent/total*100, or 0 for a team without a budget.
func BudgetUsedPercentage(t Team) float64 {
	return percentage(float64(t.SpentBudget), float64(t.TotalBudget))
}

// SquadFilledPercentage is current/max*100, or 0 for a team without capacity.
func SquadFilledPercentage(t Team) float64 {
	return percentage(float64(t.CurrentPlayers), float64(t.MaxPlayers))
}

// PriceDistributionPercentage is the player's sold price relative to the most
// expensive player in squad. Unsold players and squads whose top price is 0
// yield 0.
func PriceDistributionPercentage(p Player, squad []Player) float64 {
	top := lo.Max(lo.Map(squad, func(sp Player, _ int) int64 { return soldPrice(sp) }))
	return percentage(float64(soldPrice(p)), float64(top))
}

// AveragePrice is the team's spend spread over its squad, 0 for an empty squad.
func AveragePrice(t Team, squad []Player) int64 {
	if len(squad) == 0 {
		return 0
	}
	return t.SpentBudget / int64(len(squad))
}

// SquadOf returns the players signed to teamID, preserving order.
func SquadOf(players []Player, teamID string) []Player {
	return lo.Filter(players, func(p Player, _ int) bool {
		return p.TeamID != nil && *p.TeamID == teamID
	})
}

// StatusFilter selects players by status. The zero value and All match every
// player.
type StatusFilter string

// All matches every player regardless of status.
const All StatusFilter = "All"

// FilterByStatus returns the players matching f, preserving order.
func FilterByStatus(players []Player, f StatusFilter) []Player {
	if f == "" || f == All {
		return players
	}
	return lo.Filter(players, func(p Player, _ int) bool {
		return p.Status == Status(f)
	})
}

// Counts tallies players per status.
type Counts struct {
	Total  int `json:"total"`
	Sold   int `json:"sold"`
	Unsold int `json:"unsold"`
}

// CountByStatus tallies players per status.
func CountByStatus(players []Player) Counts {
	sold := lo.CountBy(players, func(p Player) bool { return p.Status == Sold })
	return Counts{
		Total:  len(players),
		Sold:   sold,
		Unsold: len(players) - sold,
	}
}

func soldPrice(p Player) int64 {
	if p.SoldPrice == nil {
		return 0
	}
	return *p.SoldPrice
}

func percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
