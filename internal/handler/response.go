// Package handler is the JSON layer: it decodes requests, calls the
// services and maps business errors to HTTP statuses. No business
// logic lives here.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/logger"
)

// errorResponse is the shape of every error body the API returns.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already out; nothing left to do but log
		logger.Error("failed to encode response", "err", err)
	}
}

// writeError translates a service error into a status and a stable
// machine-readable code. Anything outside the sentinel taxonomy is a
// 500 with no detail leaked to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrCodeNotFound):
		status, code = http.StatusNotFound, "code_not_found"
	case errors.Is(err, apperror.ErrAlreadyPaired):
		status, code = http.StatusConflict, "already_paired"
	case errors.Is(err, apperror.ErrSelfPairing):
		status, code = http.StatusConflict, "self_pairing"
	case errors.Is(err, apperror.ErrNoPartner):
		status, code = http.StatusConflict, "no_partner"
	case errors.Is(err, apperror.ErrHasDependents):
		status, code = http.StatusConflict, "has_dependents"
	default:
		logger.Error("unhandled error", "err", err)
	}

	writeJSON(w, status, errorResponse{
		Error:   code,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// decodeJSON reads the request body into dst, rejecting unknown fields
// so typos fail loudly instead of silently.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation("", "invalid JSON body")
	}
	return nil
}
