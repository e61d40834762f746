package auction

import (
	"encoding/json"
	"errors"
	"maps"
	"sync"

	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/event"
	"github.com/jensholdgaard/player-auction/internal/roster"
)

// SessionID is the aggregate id of the process-wide auction session.
const SessionID = "session"

// ErrNoPlayers is returned when a session is opened on an empty player list.
var ErrNoPlayers = errors.New("no players to auction")

// Overlay is the transient result display shown while a resolution is
// pending. It has no bearing on the auction outcome.
type Overlay string

const (
	OverlayNone        Overlay = ""
	OverlayCelebration Overlay = "celebration"
	OverlayUnsold      Overlay = "unsold"
)

// Session is the auction progression state machine. It walks an ordered
// player list one lot at a time: teams raise the bid by a fixed increment,
// the lot is confirmed sold or unsold, and Advance moves to the next lot.
//
// Transitions never fail. A transition that is not currently allowed is inert
// and reports false. Session is safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	players   []roster.Player
	increment int64

	index       int
	currentBid  int64
	leadingTeam string
	teamBids    map[string]int64
	overlay     Overlay
	resolving   bool
	finished    bool

	version int
	events  []event.Event
	clock   clock.Clock
}

// NewSession opens a session on the first of players. The slice is copied.
func NewSession(players []roster.Player, increment int64, clk clock.Clock) (*Session, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}
	return &Session{
		players:    append([]roster.Player(nil), players...),
		increment:  increment,
		currentBid: players[0].BasePrice,
		teamBids:   make(map[string]int64),
		clock:      clk,
	}, nil
}

// PlaceBid raises the current bid by one increment on behalf of teamID and
// makes it the leading team. The leading team may raise its own bid. It is
// inert while a resolution is pending or once the session has finished.
func (s *Session) PlaceBid(teamID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolving || s.finished {
		return false
	}

	s.currentBid += s.increment
	s.leadingTeam = teamID
	s.teamBids[teamID] = s.currentBid

	s.record(event.BidPlaced, event.BidPlacedData{
		PlayerID: s.players[s.index].ID,
		TeamID:   teamID,
		Amount:   s.currentBid,
	})
	return true
}

// ConfirmSold resolves the current player as sold to the leading team at the
// current bid and shows the celebration until Advance. The sale is recorded
// as an event only; player and team records are left untouched. It is inert
// without a leading team.
func (s *Session) ConfirmSold() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolving || s.finished || s.leadingTeam == "" {
		return false
	}

	s.overlay = OverlayCelebration
	s.resolving = true

	p := s.players[s.index]
	s.record(event.PlayerSold, event.SaleData{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		TeamID:     s.leadingTeam,
		Amount:     s.currentBid,
	})
	return true
}

// ConfirmUnsold resolves the current player as unsold and shows the unsold
// indicator until Advance.
func (s *Session) ConfirmUnsold() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolving || s.finished {
		return false
	}

	s.overlay = OverlayUnsold
	s.resolving = true

	p := s.players[s.index]
	s.record(event.PlayerUnsold, event.UnsoldData{
		PlayerID:   p.ID,
		PlayerName: p.Name,
	})
	return true
}

// Advance ends the current resolution and moves to the next player, opening
// the bid at its base price. On the last player the index stays put and the
// session finishes without further notice.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay = OverlayNone
	s.resolving = false

	if s.index >= len(s.players)-1 {
		s.finished = true
		return
	}

	s.index++
	s.currentBid = s.players[s.index].BasePrice
	s.leadingTeam = ""
	s.teamBids = make(map[string]int64)

	s.record(event.Advanced, event.AdvancedData{
		Index:    s.index,
		PlayerID: s.players[s.index].ID,
		Bid:      s.currentBid,
	})
}

// Snapshot is a point-in-time copy of the session for rendering.
type Snapshot struct {
	Index        int              `json:"index"`
	Total        int              `json:"total"`
	Player       roster.Player    `json:"player"`
	CurrentBid   int64            `json:"current_bid"`
	BidIncrement int64            `json:"bid_increment"`
	LeadingTeam  string           `json:"leading_team,omitempty"`
	TeamBids     map[string]int64 `json:"team_bids"`
	Overlay      Overlay          `json:"overlay,omitempty"`
	Resolving    bool             `json:"resolving"`
	Finished     bool             `json:"finished"`
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Index:        s.index,
		Total:        len(s.players),
		Player:       s.players[s.index],
		CurrentBid:   s.currentBid,
		BidIncrement: s.increment,
		LeadingTeam:  s.leadingTeam,
		TeamBids:     maps.Clone(s.teamBids),
		Overlay:      s.overlay,
		Resolving:    s.resolving,
		Finished:     s.finished,
	}
}

// PendingEvents returns unpublished events and clears the buffer.
func (s *Session) PendingEvents() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

func (s *Session) record(t event.Type, payload any) {
	data, _ := json.Marshal(payload)
	s.version++
	s.events = append(s.events, event.Event{
		AggregateID: SessionID,
		Type:        t,
		Data:        data,
		Version:     s.version,
		CreatedAt:   s.clock.Now().UTC(),
	})
}
