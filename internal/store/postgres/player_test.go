package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
	"github.com/jensholdgaard/player-auction/internal/store/postgres"
)

func TestPlayerRepo_List(t *testing.T) {
	db := newTestDB(t)
	seedRoster(t, db)
	repo := postgres.NewPlayerRepo(db)

	players, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("List returned %d players, want 3", len(players))
	}

	// Ordered by auction position, not insertion order.
	for i, want := range []string{"p1", "p2", "p3"} {
		if players[i].ID != want {
			t.Errorf("players[%d] = %q, want %q", i, players[i].ID, want)
		}
	}
	for _, p := range players {
		if err := p.Validate(); err != nil {
			t.Errorf("loaded player invalid: %v", err)
		}
	}
}

func TestPlayerRepo_Get(t *testing.T) {
	db := newTestDB(t)
	seedRoster(t, db)
	repo := postgres.NewPlayerRepo(db)
	ctx := context.Background()

	p, err := repo.Get(ctx, "p2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Status != roster.Sold || p.SoldPrice == nil || *p.SoldPrice != 30_000_000 {
		t.Errorf("sold player = %+v", p)
	}
	if p.TeamID == nil || *p.TeamID != "t1" {
		t.Errorf("TeamID = %v, want t1", p.TeamID)
	}
	if p.Skill != roster.AllRounder {
		t.Errorf("Skill = %q, want %q", p.Skill, roster.AllRounder)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}
