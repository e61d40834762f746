package api

import (
	"github.com/jensholdgaard/player-auction/internal/auction"
	"github.com/jensholdgaard/player-auction/internal/roster"
)

type playerView struct {
	roster.Player
	BasePriceLabel string `json:"base_price_label"`
	SoldPriceLabel string `json:"sold_price_label,omitempty"`
}

func newPlayerView(p roster.Player) playerView {
	v := playerView{Player: p, BasePriceLabel: roster.Lakhs(p.BasePrice)}
	if p.SoldPrice != nil {
		v.SoldPriceLabel = roster.Lakhs(*p.SoldPrice)
	}
	return v
}

type teamView struct {
	roster.Team
	RemainingBudget       int64   `json:"remaining_budget"`
	RemainingSlots        int     `json:"remaining_slots"`
	BudgetUsedPercentage  float64 `json:"budget_used_percentage"`
	SquadFilledPercentage float64 `json:"squad_filled_percentage"`
	TotalBudgetLabel      string  `json:"total_budget_label"`
	SpentBudgetLabel      string  `json:"spent_budget_label"`
	RemainingBudgetLabel  string  `json:"remaining_budget_label"`
}

func newTeamView(t roster.Team) teamView {
	remaining := roster.RemainingBudget(t)
	return teamView{
		Team:                  t,
		RemainingBudget:       remaining,
		RemainingSlots:        roster.RemainingSlots(t),
		BudgetUsedPercentage:  roster.BudgetUsedPercentage(t),
		SquadFilledPercentage: roster.SquadFilledPercentage(t),
		TotalBudgetLabel:      roster.Crores(t.TotalBudget, 1),
		SpentBudgetLabel:      roster.Crores(t.SpentBudget, 1),
		RemainingBudgetLabel:  roster.Crores(remaining, 2),
	}
}

type squadPlayerView struct {
	playerView
	PriceDistributionPercentage float64 `json:"price_distribution_percentage"`
}

type teamDetailView struct {
	Team              teamView          `json:"team"`
	Squad             []squadPlayerView `json:"squad"`
	AveragePrice      int64             `json:"average_price"`
	AveragePriceLabel string            `json:"average_price_label"`
}

func newTeamDetailView(t roster.Team, squad []roster.Player) teamDetailView {
	avg := roster.AveragePrice(t, squad)
	v := teamDetailView{
		Team:              newTeamView(t),
		Squad:             make([]squadPlayerView, 0, len(squad)),
		AveragePrice:      avg,
		AveragePriceLabel: roster.Lakhs(avg),
	}
	for _, p := range squad {
		v.Squad = append(v.Squad, squadPlayerView{
			playerView:                  newPlayerView(p),
			PriceDistributionPercentage: roster.PriceDistributionPercentage(p, squad),
		})
	}
	return v
}

type auctionView struct {
	auction.Snapshot
	CurrentBidLabel   string            `json:"current_bid_label"`
	BidIncrementLabel string            `json:"bid_increment_label"`
	BasePriceLabel    string            `json:"base_price_label"`
	TeamBidLabels     map[string]string `json:"team_bid_labels"`
}

func newAuctionView(s auction.Snapshot) auctionView {
	labels := make(map[string]string, len(s.TeamBids))
	for team, amount := range s.TeamBids {
		labels[team] = roster.Lakhs(amount)
	}
	return auctionView{
		Snapshot:          s,
		CurrentBidLabel:   roster.Lakhs(s.CurrentBid),
		BidIncrementLabel: roster.Lakhs(s.BidIncrement),
		BasePriceLabel:    roster.Lakhs(s.Player.BasePrice),
		TeamBidLabels:     labels,
	}
}
