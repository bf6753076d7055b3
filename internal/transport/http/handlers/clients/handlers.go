package clientshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/clients"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

// maxListLimit caps a single page of ?limit= on list endpoints.
const maxListLimit = 500

type Handler struct {
	Service *clients.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *clients.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/{clientID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Put("/{clientID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Delete("/{clientID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "client_list_failed", "failed to list clients", middleware.GetRequestID(r.Context()))
		return
	}
	shared.WritePage(w, r, out, maxListLimit)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload clients.Input
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if validate(payload).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	c, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "client_create_failed", "failed to create client", middleware.GetRequestID(r.Context()))
		return
	}
	shared.Audit(r, h.Audit, "client.create", "client", c.ID, nil, c)
	api.Created(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clientID")
	var payload clients.Input
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if validate(payload).Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "client.update", "client", id, before, c)
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clientID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "client.delete", "client", id, nil, nil)
	api.Deleted(w, id, middleware.GetRequestID(r.Context()))
}

func validate(in clients.Input) *shared.Validator {
	v := shared.NewValidator()
	v.Required("nama", in.Nama, "is required")
	v.Enum("tipe", in.Tipe, clients.Tipes, "must be perorangan or perusahaan")
	return v
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, clients.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "client not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "client_failed", "client operation failed", middleware.GetRequestID(r.Context()))
}
