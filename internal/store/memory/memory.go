// Package memory provides a store.Driver that serves the roster from a YAML
// seed file held in memory for the life of the process.
package memory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
)

//go:embed seed.yaml
var defaultSeed []byte

func init() {
	store.Register("memory", openMemory)
}

// Seed is the on-disk roster format.
type Seed struct {
	Teams   []roster.Team   `yaml:"teams"`
	Players []roster.Player `yaml:"players"`
}

// openMemory is the store.Driver for the "memory" backend.
func openMemory(_ context.Context, cfg config.DatabaseConfig) (*store.Repositories, error) {
	data := defaultSeed
	if cfg.SeedPath != "" {
		var err error
		data, err = os.ReadFile(filepath.Clean(cfg.SeedPath))
		if err != nil {
			return nil, fmt.Errorf("reading seed file: %w", err)
		}
	}

	seed, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}

	s := New(seed)
	return &store.Repositories{
		Players: s,
		Teams:   s.Teams(),
		Closer:  store.NopCloser{},
		Ping:    func(context.Context) error { return nil },
	}, nil
}

// ParseSeed decodes and validates a YAML seed document.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parsing seed: %w", err)
	}

	var errs []error
	teamIDs := make(map[string]struct{}, len(seed.Teams))
	for _, t := range seed.Teams {
		if _, dup := teamIDs[t.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate team id %q", t.ID))
		}
		teamIDs[t.ID] = struct{}{}
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	playerIDs := make(map[string]struct{}, len(seed.Players))
	for i := range seed.Players {
		if seed.Players[i].Status == "" {
			seed.Players[i].Status = roster.Unsold
		}
		p := seed.Players[i]
		if _, dup := playerIDs[p.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate player id %q", p.ID))
		}
		playerIDs[p.ID] = struct{}{}
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if p.TeamID != nil {
			if _, ok := teamIDs[*p.TeamID]; !ok {
				errs = append(errs, fmt.Errorf("player %s: unknown team %q", p.ID, *p.TeamID))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Seed{}, fmt.Errorf("validating seed: %w", err)
	}
	return seed, nil
}

// Store holds a seeded roster. It implements store.PlayerRepository; Teams
// returns the matching store.TeamRepository. The roster is never modified
// after New, so reads need no locking.
type Store struct {
	players []roster.Player
	teams   []roster.Team
}

// New returns a Store holding a copy of seed.
func New(seed Seed) *Store {
	return &Store{
		players: append([]roster.Player(nil), seed.Players...),
		teams:   append([]roster.Team(nil), seed.Teams...),
	}
}

// List returns the players in seed order.
func (s *Store) List(_ context.Context) ([]roster.Player, error) {
	return append([]roster.Player(nil), s.players...), nil
}

// Get returns the player with id.
func (s *Store) Get(_ context.Context, id string) (*roster.Player, error) {
	for _, p := range s.players {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", id, store.ErrNotFound)
}

// Teams returns a TeamRepository over the same seed.
func (s *Store) Teams() *TeamRepo {
	return &TeamRepo{s: s}
}

// TeamRepo implements store.TeamRepository over a Store.
type TeamRepo struct {
	s *Store
}

// List returns the teams in seed order.
func (r *TeamRepo) List(_ context.Context) ([]roster.Team, error) {
	return append([]roster.Team(nil), r.s.teams...), nil
}

// Get returns the team with id.
func (r *TeamRepo) Get(_ context.Context, id string) (*roster.Team, error) {
	for _, t := range r.s.teams {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("team %s: %w", id, store.ErrNotFound)
}
