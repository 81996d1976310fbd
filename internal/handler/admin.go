package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dichenko/myshadow/internal/app"
	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/repository"
)

// AdminHandler is the catalog CRUD behind the admin guard. It talks to
// the repository directly; there is no business logic beyond the
// dependent-count guards the repository already enforces.
type AdminHandler struct {
	catalog *repository.CatalogRepository
}

func NewAdminHandler(appCtx *app.AppContext) *AdminHandler {
	return &AdminHandler{catalog: repository.NewCatalogRepository(appCtx.DB)}
}

func idParam(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("id", "id must be a positive integer")
	}
	return id, nil
}

// --- blocks ---

type createBlockRequest struct {
	Title string `json:"title"`
	Order int    `json:"order"`
}

func (h *AdminHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, apperror.Validation("title", "title is required"))
		return
	}

	block := db.Block{Title: strings.TrimSpace(req.Title), Order: req.Order}
	if err := h.catalog.CreateBlock(r.Context(), &block); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (h *AdminHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.catalog.ListBlocks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

func (h *AdminHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteBlock(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- practices ---

type createPracticeRequest struct {
	Title string `json:"title"`
}

func (h *AdminHandler) CreatePractice(w http.ResponseWriter, r *http.Request) {
	var req createPracticeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, apperror.Validation("title", "title is required"))
		return
	}

	practice := db.Practice{Title: strings.TrimSpace(req.Title)}
	if err := h.catalog.CreatePractice(r.Context(), &practice); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, practice)
}

func (h *AdminHandler) ListPractices(w http.ResponseWriter, r *http.Request) {
	practices, err := h.catalog.ListPractices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"practices": practices})
}

func (h *AdminHandler) DeletePractice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeletePractice(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- questions ---

type createQuestionRequest struct {
	BlockID    uint64          `json:"block_id"`
	PracticeID uint64          `json:"practice_id"`
	Text       string          `json:"text"`
	Order      int             `json:"order"`
	Role       db.QuestionRole `json:"role"`
}

func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch {
	case strings.TrimSpace(req.Text) == "":
		writeError(w, apperror.Validation("text", "text is required"))
		return
	case req.BlockID == 0:
		writeError(w, apperror.Validation("block_id", "block_id is required"))
		return
	case req.PracticeID == 0:
		writeError(w, apperror.Validation("practice_id", "practice_id is required"))
		return
	}
	if req.Role == "" {
		req.Role = db.RoleNone
	}
	if !req.Role.Valid() {
		writeError(w, apperror.Validation("role", "role must be none, giver or taker"))
		return
	}

	question := db.Question{
		BlockID:    req.BlockID,
		PracticeID: req.PracticeID,
		Text:       strings.TrimSpace(req.Text),
		Order:      req.Order,
		Role:       req.Role,
	}
	if err := h.catalog.CreateQuestion(r.Context(), &question); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// ListQuestions returns the questions, optionally for one block via
// ?block_id=.
func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	var blockID uint64
	if raw := r.URL.Query().Get("block_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			writeError(w, apperror.Validation("block_id", "block_id must be a positive integer"))
			return
		}
		blockID = id
	}

	questions, err := h.catalog.ListQuestions(r.Context(), blockID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
