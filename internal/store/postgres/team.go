package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
)

const teamColumns = `id, name, logo, color, total_budget, spent_budget, max_players, current_players`

// TeamRepo implements store.TeamRepository with sqlx.
type TeamRepo struct {
	db *sqlx.DB
}

// NewTeamRepo returns a new TeamRepo.
func NewTeamRepo(db *sqlx.DB) *TeamRepo {
	return &TeamRepo{db: db}
}

func (r *TeamRepo) List(ctx context.Context) ([]roster.Team, error) {
	var teams []roster.Team
	err := r.db.SelectContext(ctx, &teams, `SELECT `+teamColumns+` FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	return teams, nil
}

func (r *TeamRepo) Get(ctx context.Context, id string) (*roster.Team, error) {
	var t roster.Team
	err := r.db.GetContext(ctx, &t, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting team: %w", err)
	}
	return &t, nil
}
