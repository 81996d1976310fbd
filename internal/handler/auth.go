package handler

import (
	"net/http"
	"time"

	"github.com/dichenko/myshadow/internal/app"
	"github.com/dichenko/myshadow/internal/auth"
	"github.com/dichenko/myshadow/internal/config"
	"github.com/dichenko/myshadow/internal/repository"
)

// AuthHandler exchanges Telegram init payloads and the admin password
// for JWT sessions.
type AuthHandler struct {
	appCtx *app.AppContext
	cfg    *config.Config
	tokens *auth.TokenService
	users  *repository.UserRepository
}

func NewAuthHandler(appCtx *app.AppContext, cfg *config.Config, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		appCtx: appCtx,
		cfg:    cfg,
		tokens: tokens,
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

type telegramLoginRequest struct {
	InitData string `json:"init_data"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *userProfile `json:"user,omitempty"`
}

// TelegramLogin verifies the Mini App init payload, upserts the user
// and mints a session token.
//
// POST /api/auth/telegram
func (h *AuthHandler) TelegramLogin(w http.ResponseWriter, r *http.Request) {
	var req telegramLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tgUser, err := auth.VerifyInitData(req.InitData, h.cfg.Telegram.BotToken, h.cfg.Auth.InitDataMaxAge, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpsertFromTelegram(r.Context(), tgUser.ID, tgUser.FirstName, tgUser.LastName)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.GenerateUser(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: profileOf(user)})
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLogin checks the configured password hash and mints an admin
// session token.
//
// POST /api/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := auth.VerifyAdminPassword(h.cfg.Auth.AdminPasswordHash, req.Password); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.GenerateAdmin()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token})
}
