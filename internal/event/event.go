package event

import (
	"encoding/json"
	"time"
)

// Type identifies an event kind.
type Type string

const (
	BidPlaced    Type = "session.bid_placed"
	PlayerSold   Type = "session.player_sold"
	PlayerUnsold Type = "session.player_unsold"
	Advanced     Type = "session.advanced"

	RosterImported Type = "roster.imported"
)

// Event represents a single domain event.
type Event struct {
	AggregateID string          `json:"aggregate_id"`
	Type        Type            `json:"type"`
	Data        json.RawMessage `json:"data"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BidPlacedData is the payload for BidPlaced events.
type BidPlacedData struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	Amount   int64  `json:"amount"`
}

// SaleData is the payload for PlayerSold events.
type SaleData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	TeamID     string `json:"team_id"`
	Amount     int64  `json:"amount"`
}

// UnsoldData is the payload for PlayerUnsold events.
type UnsoldData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// AdvancedData is the payload for Advanced events.
type AdvancedData struct {
	Index    int    `json:"index"`
	PlayerID string `json:"player_id"`
	Bid      int64  `json:"bid"`
}

// RosterImportedData is the payload for RosterImported events.
type RosterImportedData struct {
	Filename string `json:"filename"`
	Players  int    `json:"players"`
	Warnings int    `json:"warnings"`
}
