package store

import (
	"context"
	"errors"

	"github.com/jensholdgaard/player-auction/internal/roster"
)

// ErrNotFound is wrapped by repository lookups that match no record.
var ErrNotFound = errors.New("not found")

// PlayerRepository reads the ordered auction roster.
type PlayerRepository interface {
	// List returns every player in auction order.
	List(ctx context.Context) ([]roster.Player, error)
	Get(ctx context.Context, id string) (*roster.Player, error)
}

// TeamRepository reads the participating teams.
type TeamRepository interface {
	List(ctx context.Context) ([]roster.Team, error)
	Get(ctx context.Context, id string) (*roster.Team, error)
}
