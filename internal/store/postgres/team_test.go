package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jensholdgaard/player-auction/internal/store"
	"github.com/jensholdgaard/player-auction/internal/store/postgres"
)

func TestTeamRepo_ListAndGet(t *testing.T) {
	db := newTestDB(t)
	seedRoster(t, db)
	repo := postgres.NewTeamRepo(db)
	ctx := context.Background()

	teams, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("List returned %d teams, want 2", len(teams))
	}
	// Ordered by name.
	if teams[0].ID != "t2" {
		t.Errorf("first team = %q, want %q", teams[0].ID, "t2")
	}

	team, err := repo.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if team.SpentBudget != 30_000_000 || team.CurrentPlayers != 1 {
		t.Errorf("team = %+v", team)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMigration_RejectsInconsistentSale(t *testing.T) {
	db := newTestDB(t)
	seedRoster(t, db)

	_, err := db.ExecContext(context.Background(),
		`INSERT INTO players (id, position, name, skill, base_price, status, photo)
		 VALUES ('bad', 9, 'Bad', 'Batsman', 100, 'Sold', '')`)
	if err == nil {
		t.Fatal("expected check constraint violation for sold player without team")
	}
}

func TestOpen_AppliesSchemaOnEveryStart(t *testing.T) {
	cfg := newTestConfig(t)
	ctx := context.Background()

	for i := range 2 {
		repos, err := store.Open(ctx, cfg)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		if err := repos.Ping(ctx); err != nil {
			t.Errorf("Ping #%d: %v", i+1, err)
		}
		teams, err := repos.Teams.List(ctx)
		if err != nil {
			t.Errorf("Teams.List #%d: %v", i+1, err)
		}
		if len(teams) != 0 {
			t.Errorf("Teams.List #%d = %d teams, want empty schema", i+1, len(teams))
		}
		repos.Closer.Close()
	}
}
