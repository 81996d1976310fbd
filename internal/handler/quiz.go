package handler

import (
	"net/http"
	"strconv"

	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/auth"
	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/service/quiz"
)

// QuizHandler exposes the answering flow.
type QuizHandler struct {
	quiz *quiz.Service
}

func NewQuizHandler(quizSvc *quiz.Service) *QuizHandler {
	return &QuizHandler{quiz: quizSvc}
}

// ListBlocks returns the catalog with the caller's answers and
// progress.
//
// GET /api/blocks
func (h *QuizHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	views, err := h.quiz.ListBlocks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocks": views})
}

type submitAnswerRequest struct {
	QuestionID uint64         `json:"question_id"`
	Value      db.AnswerValue `json:"value"`
}

// SubmitAnswer records or overwrites the caller's answer.
//
// PUT /api/answers
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.quiz.SubmitAnswer(r.Context(), userID, req.QuestionID, req.Value); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetAnswers deletes the caller's answers, optionally scoped to one
// block via ?block_id=.
//
// DELETE /api/answers
func (h *QuizHandler) ResetAnswers(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	var blockID *uint64
	if raw := r.URL.Query().Get("block_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			writeError(w, apperror.Validation("block_id", "block_id must be a positive integer"))
			return
		}
		blockID = &id
	}

	if err := h.quiz.ResetAnswers(r.Context(), userID, blockID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
