package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jensholdgaard/player-auction/internal/auction"
)

type bidRequest struct {
	TeamID string `json:"team_id"`
}

// GetAuction returns the current session state.
func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	snap, err := h.auction.Snapshot(r.Context())
	if err != nil {
		h.respondAuctionError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newAuctionView(snap))
}

// PlaceBid raises the current bid for the team in the body.
func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TeamID == "" {
		respondError(w, http.StatusBadRequest, "team_id is required")
		return
	}

	snap, err := h.auction.PlaceBid(r.Context(), req.TeamID)
	if err != nil {
		h.respondAuctionError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newAuctionView(snap))
}

// ConfirmSold resolves the current player as sold. The session advances on
// its own once the celebration has been shown, hence 202.
func (h *Handler) ConfirmSold(w http.ResponseWriter, r *http.Request) {
	snap, err := h.auction.ConfirmSold(r.Context())
	if err != nil {
		h.respondAuctionError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, newAuctionView(snap))
}

// ConfirmUnsold resolves the current player as unsold.
func (h *Handler) ConfirmUnsold(w http.ResponseWriter, r *http.Request) {
	snap, err := h.auction.ConfirmUnsold(r.Context())
	if err != nil {
		h.respondAuctionError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, newAuctionView(snap))
}

func (h *Handler) respondAuctionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auction.ErrUnknownTeam):
		respondJSON(w, http.StatusNotFound, errorBody{
			Error: err.Error(),
			Links: map[string]string{"teams": Prefix + "/teams"},
		})
	case errors.Is(err, auction.ErrNoLeadingTeam),
		errors.Is(err, auction.ErrResolutionPending),
		errors.Is(err, auction.ErrAuctionFinished):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auction.ErrNotStarted):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.respondInternal(w, r, "auction operation failed", err)
	}
}
