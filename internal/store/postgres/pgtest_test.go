package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/store/postgres"
)

// newTestConfig starts a Postgres container and returns a DatabaseConfig
// pointing at it. The container is terminated when the test ends.
func newTestConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("auction_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	return config.DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Int(),
		User:     "test",
		Password: "test",
		DBName:   "auction_test",
		SSLMode:  "disable",
	}
}

// newTestDB connects through Connect, which applies the embedded schema.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg := newTestConfig(t)

	db, err := postgres.Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedRoster inserts two teams and three players, the middle one sold.
func seedRoster(t *testing.T, db *sqlx.DB) {
	t.Helper()
	ctx := context.Background()

	db.MustExecContext(ctx, `INSERT INTO teams (id, name, logo, color, total_budget, spent_budget, max_players, current_players)
		VALUES ('t1', 'Mumbai Mavericks', 'M', '#004BA0', 900000000, 30000000, 25, 1),
		       ('t2', 'Chennai Chargers', 'C', '#FDB913', 900000000, 0, 25, 0)`)
	db.MustExecContext(ctx, `INSERT INTO players (id, position, name, skill, base_price, sold_price, status, team_id, photo)
		VALUES ('p3', 3, 'Third', 'Bowler', 1000000, NULL, 'Unsold', NULL, '/placeholder.svg'),
		       ('p1', 1, 'First', 'Batsman', 2000000, NULL, 'Unsold', NULL, '/placeholder.svg'),
		       ('p2', 2, 'Second', 'All-Rounder', 1500000, 30000000, 'Sold', 't1', '/placeholder.svg')`)
}
