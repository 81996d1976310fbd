package handler

import (
	"net/http"

	"github.com/dichenko/myshadow/internal/auth"
	"github.com/dichenko/myshadow/internal/service/match"
)

// MatchHandler serves the couple's shared view.
type MatchHandler struct {
	matches *match.Service
}

func NewMatchHandler(matchSvc *match.Service) *MatchHandler {
	return &MatchHandler{matches: matchSvc}
}

// List returns every match grouped by block.
//
// GET /api/matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	result, err := h.matches.Compute(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Count returns the cached match counter.
//
// GET /api/matches/count
func (h *MatchHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	n, err := h.matches.Count(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}
