// Package roster defines the players and teams taking part in an auction
// together with the figures derived from them for display.
package roster

import (
	"errors"
	"fmt"
	"strings"
)

// Skill is a player's primary role.
type Skill string

const (
	Batsman      Skill = "Batsman"
	Bowler       Skill = "Bowler"
	AllRounder   Skill = "All-Rounder"
	WicketKeeper Skill = "Wicket-Keeper"
)

// Skills lists every known skill in display order.
var Skills = []Skill{Batsman, Bowler, AllRounder, WicketKeeper}

// Known reports whether s is one of the closed set of skills.
func (s Skill) Known() bool {
	for _, k := range Skills {
		if s == k {
			return true
		}
	}
	return false
}

// ParseSkill maps loosely written skill names ("all rounder", "WICKET_KEEPER",
// "wicketkeeper") onto a known Skill. ok is false when nothing matches.
func ParseSkill(raw string) (skill Skill, ok bool) {
	key := skillKey(raw)
	for _, k := range Skills {
		if skillKey(string(k)) == key {
			return k, true
		}
	}
	return "", false
}

func skillKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// Status is the auction outcome of a player.
type Status string

const (
	Unsold Status = "Unsold"
	Sold   Status = "Sold"
)

// Errors returned by Validate.
var (
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrSoldInconsistent = errors.New("sold price and team must be set exactly when sold")
	ErrOverBudget       = errors.New("spent budget exceeds total budget")
	ErrSquadOverfull    = errors.New("current players exceed max players")
)

// Player is a single auction lot.
type Player struct {
	ID        string  `json:"id" yaml:"id" db:"id"`
	Name      string  `json:"name" yaml:"name" db:"name"`
	Skill     Skill   `json:"skill" yaml:"skill" db:"skill"`
	BasePrice int64   `json:"base_price" yaml:"base_price" db:"base_price"`
	SoldPrice *int64  `json:"sold_price,omitempty" yaml:"sold_price,omitempty" db:"sold_price"`
	Status    Status  `json:"status" yaml:"status" db:"status"`
	TeamID    *string `json:"team_id,omitempty" yaml:"team_id,omitempty" db:"team_id"`
	Photo     string  `json:"photo" yaml:"photo" db:"photo"`
}

// Validate checks the player's invariants: non-negative prices, and a sold
// price and team present if and only if the player is sold.
func (p Player) Validate() error {
	if p.BasePrice < 0 || (p.SoldPrice != nil && *p.SoldPrice < 0) {
		return fmt.Errorf("player %s: %w", p.ID, ErrNegativeAmount)
	}
	sold := p.Status == Sold
	if (p.SoldPrice != nil) != sold || (p.TeamID != nil) != sold {
		return fmt.Errorf("player %s: %w", p.ID, ErrSoldInconsistent)
	}
	switch p.Status {
	case Sold, Unsold:
	default:
		return fmt.Errorf("player %s: unknown status %q", p.ID, p.Status)
	}
	return nil
}

// Team is a franchise bidding for players.
type Team struct {
	ID             string `json:"id" yaml:"id" db:"id"`
	Name           string `json:"name" yaml:"name" db:"name"`
	Logo           string `json:"logo" yaml:"logo" db:"logo"`
	Color          string `json:"color" yaml:"color" db:"color"`
	TotalBudget    int64  `json:"total_budget" yaml:"total_budget" db:"total_budget"`
	SpentBudget    int64  `json:"spent_budget" yaml:"spent_budget" db:"spent_budget"`
	MaxPlayers     int    `json:"max_players" yaml:"max_players" db:"max_players"`
	CurrentPlayers int    `json:"current_players" yaml:"current_players" db:"current_players"`
}

// Validate checks that the team's figures are non-negative and within their
// ceilings.
func (t Team) Validate() error {
	if t.TotalBudget < 0 || t.SpentBudget < 0 || t.MaxPlayers < 0 || t.CurrentPlayers < 0 {
		return fmt.Errorf("team %s: %w", t.ID, ErrNegativeAmount)
	}
	if t.SpentBudget > t.TotalBudget {
		return fmt.Errorf("team %s: %w", t.ID, ErrOverBudget)
	}
	if t.CurrentPlayers > t.MaxPlayers {
		return fmt.Errorf("team %s: %w", t.ID, ErrSquadOverfull)
	}
	return nil
}
