package handler

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/dichenko/myshadow/internal/app"
	"github.com/dichenko/myshadow/internal/apperror"
	"github.com/dichenko/myshadow/internal/auth"
	"github.com/dichenko/myshadow/internal/db"
	"github.com/dichenko/myshadow/internal/repository"
	"github.com/dichenko/myshadow/internal/service/pairing"
)

// userProfile is the public view of a user account.
type userProfile struct {
	ID        uint64 `json:"id"`
	TgID      int64  `json:"tg_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Paired    bool   `json:"paired"`
	Visits    int    `json:"visits"`
}

func profileOf(u *db.User) *userProfile {
	return &userProfile{
		ID:        u.ID,
		TgID:      u.TgID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Paired:    u.PartnerID != nil,
		Visits:    u.Visits,
	}
}

// MeHandler serves the authenticated user's own account.
type MeHandler struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	pairing *pairing.Service
}

func NewMeHandler(appCtx *app.AppContext, pairingSvc *pairing.Service) *MeHandler {
	return &MeHandler{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		pairing: pairingSvc,
	}
}

// Get returns the profile and pairing state.
//
// GET /api/me
func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	user, err := h.users.GetByID(r.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, apperror.NotFound("user", userID))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileOf(user))
}

// Delete removes the account: pairing severed, answers gone, user row
// gone.
//
// DELETE /api/me
func (h *MeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	if err := h.pairing.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
