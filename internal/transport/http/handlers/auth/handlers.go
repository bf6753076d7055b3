package authhandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"c2ms/internal/domain/auth"
	"c2ms/internal/requestctx"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

const tokenTTL = 8 * time.Hour

// UserStore is the part of auth.Store the login flow needs.
type UserStore interface {
	FindActiveUserByEmail(ctx context.Context, email string) (auth.User, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Handler struct {
	Users  UserStore
	Secret string
}

func NewHandler(users UserStore, secret string) *Handler {
	return &Handler{Users: users, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" || payload.Password == "" {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	user, err := h.Users.FindActiveUserByEmail(r.Context(), email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, Email: user.Email, Role: user.Role}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}
	if err := h.Users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token":     token,
		"expiresIn": int(tokenTTL.Seconds()),
		"user":      map[string]string{"id": user.ID, "email": user.Email, "name": user.Name, "role": user.Role},
	}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}
	perms := auth.RolePermissions[user.Role]
	if perms == nil {
		perms = []string{}
	}
	api.Success(w, map[string]any{
		"id":          user.UserID,
		"email":       user.Email,
		"role":        user.Role,
		"permissions": perms,
	}, requestctx.GetRequestID(r.Context()))
}
