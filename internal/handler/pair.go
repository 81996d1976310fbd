package handler

import (
	"net/http"

	"github.com/dichenko/myshadow/internal/auth"
	"github.com/dichenko/myshadow/internal/service/pairing"
)

// PairHandler exposes the pairing lifecycle.
type PairHandler struct {
	pairing *pairing.Service
}

func NewPairHandler(pairingSvc *pairing.Service) *PairHandler {
	return &PairHandler{pairing: pairingSvc}
}

// GetCode returns the user's pair code, issuing one on first request.
//
// GET /api/pair/code
func (h *PairHandler) GetCode(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	code, err := h.pairing.GetOrCreateCode(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

type createPairRequest struct {
	Code string `json:"code"`
}

// Create links the caller with the owner of the presented code.
//
// POST /api/pair
func (h *PairHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	var req createPairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	partner, err := h.pairing.CreatePair(r.Context(), userID, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"partner": profileOf(partner)})
}

// Delete dissolves the pairing.
//
// DELETE /api/pair
func (h *PairHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	if err := h.pairing.DeletePair(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
