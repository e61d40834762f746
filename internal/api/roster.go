package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
)

type playersResponse struct {
	Filter  roster.StatusFilter `json:"filter"`
	Players []playerView        `json:"players"`
	Counts  roster.Counts       `json:"counts"`
}

// ListPlayers returns the roster filtered by ?status=All|Sold|Unsold. The
// counts always cover the whole roster.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseStatusFilter(r.URL.Query().Get("status"))
	if !ok {
		respondError(w, http.StatusBadRequest, "status must be one of All, Sold, Unsold")
		return
	}

	players, err := h.players.List(r.Context())
	if err != nil {
		h.respondInternal(w, r, "failed to list players", err)
		return
	}

	respondJSON(w, http.StatusOK, playersResponse{
		Filter:  filter,
		Players: lo.Map(roster.FilterByStatus(players, filter), func(p roster.Player, _ int) playerView { return newPlayerView(p) }),
		Counts:  roster.CountByStatus(players),
	})
}

func parseStatusFilter(raw string) (roster.StatusFilter, bool) {
	if raw == "" {
		return roster.All, true
	}
	for _, f := range []roster.StatusFilter{roster.All, roster.StatusFilter(roster.Sold), roster.StatusFilter(roster.Unsold)} {
		if strings.EqualFold(raw, string(f)) {
			return f, true
		}
	}
	return "", false
}

// ListTeams returns every team with its budget and squad figures.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context())
	if err != nil {
		h.respondInternal(w, r, "failed to list teams", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"teams": lo.Map(teams, func(t roster.Team, _ int) teamView { return newTeamView(t) }),
	})
}

// GetTeam returns one team with its squad. An unknown id answers 404 with a
// link back to the team listing.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	team, err := h.teams.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, errorBody{
			Error: "team not found",
			Links: map[string]string{"teams": Prefix + "/teams"},
		})
		return
	}
	if err != nil {
		h.respondInternal(w, r, "failed to get team", err)
		return
	}

	players, err := h.players.List(r.Context())
	if err != nil {
		h.respondInternal(w, r, "failed to list players", err)
		return
	}

	respondJSON(w, http.StatusOK, newTeamDetailView(*team, roster.SquadOf(players, team.ID)))
}
