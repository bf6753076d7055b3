package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/events", h.handleListEvents)
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r, 100, 500)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_query", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		Actor:      q.Get("actor"),
	}
	includeDetails := q.Get("includeDetails") == "true"

	events, err := h.Service.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
