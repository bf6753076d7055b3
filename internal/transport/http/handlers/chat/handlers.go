package chathandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/chat"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

// maxHistory bounds how many prior turns are forwarded to the model.
const maxHistory = 20

type Handler struct {
	Bridge *chat.Bridge
	Perms  middleware.PermissionStore
}

func NewHandler(bridge *chat.Bridge, perms middleware.PermissionStore) *Handler {
	return &Handler{Bridge: bridge, Perms: perms}
}

type chatPayload struct {
	Message string         `json:"message"`
	History []chat.Message `json:"history"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermChatUse, h.Perms)).Post("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.Bridge == nil {
		api.Fail(w, http.StatusServiceUnavailable, "chat_unavailable", "chat assistant is not configured", middleware.GetRequestID(r.Context()))
		return
	}
	var payload chatPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	history := payload.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	answer, err := h.Bridge.Reply(r.Context(), history, payload.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "message", Reason: "is required"}})
		return
	}
	if err != nil {
		slog.Error("chat reply failed", "err", err)
		api.Fail(w, http.StatusBadGateway, "chat_failed", "assistant did not answer", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, answer, middleware.GetRequestID(r.Context()))
}
