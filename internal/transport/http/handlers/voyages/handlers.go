package voyageshandler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/domain/voyages"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

// maxListLimit caps a single page of ?limit= on list endpoints.
const maxListLimit = 500

type Handler struct {
	Service *voyages.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Loc     *time.Location
}

func NewHandler(service *voyages.Service, perms middleware.PermissionStore, auditSvc *audit.Service, loc *time.Location) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Loc: loc}
}

type voyagePayload struct {
	Kode    string `json:"kode"`
	Moda    string `json:"moda"`
	FleetID string `json:"fleetId"`
	Asal    string `json:"asal"`
	Tujuan  string `json:"tujuan"`
	ETD     string `json:"etd"`
	ETA     string `json:"eta"`
	Catatan string `json:"catatan"`
}

type assignPayload struct {
	TransactionIDs []string `json:"transactionIds"`
}

type statusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/voyages", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/upcoming", h.handleUpcoming)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/{voyageID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Put("/{voyageID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Delete("/{voyageID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/{voyageID}/transactions", h.handleAssign)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Delete("/{voyageID}/transactions/{transactionID}", h.handleUnassign)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/{voyageID}/status", h.handleStatus)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" {
		v := shared.NewValidator()
		v.Enum("status", status, voyages.Statuses, "unknown voyage status")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
	}
	out, err := h.Service.List(r.Context(), status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "voyage_list_failed", "failed to list voyages", middleware.GetRequestID(r.Context()))
		return
	}
	shared.WritePage(w, r, out, maxListLimit)
}

func (h *Handler) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.Upcoming(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "voyage_list_failed", "failed to list voyages", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	v, err := h.Service.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "voyage.create", "voyage", v.ID, nil, v)
	api.Created(w, v, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Get(r.Context(), chi.URLParam(r, "voyageID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, v, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "voyageID")
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	v, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "voyage.update", "voyage", id, nil, v)
	api.Success(w, v, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "voyageID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "voyage.delete", "voyage", id, nil, nil)
	api.Deleted(w, id, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "voyageID")
	var payload assignPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if len(payload.TransactionIDs) == 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "transactionIds", Reason: "must list at least one transaction"}})
		return
	}
	v, err := h.Service.Assign(r.Context(), id, payload.TransactionIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "voyage.assign", "voyage", id, nil, payload)
	api.Success(w, v, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "voyageID")
	txID := chi.URLParam(r, "transactionID")
	v, err := h.Service.Unassign(r.Context(), id, txID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "voyage.unassign", "voyage", id, nil, map[string]string{"transactionId": txID})
	api.Success(w, v, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "voyageID")
	var payload statusPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v, err := h.Service.SetStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "voyage.status", "voyage", id, nil, payload)
	api.Success(w, v, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (voyages.Input, bool) {
	var payload voyagePayload
	if !shared.DecodeJSON(w, r, &payload) {
		return voyages.Input{}, false
	}
	v := shared.NewValidator()
	v.Required("kode", payload.Kode, "is required")
	v.Required("moda", payload.Moda, "is required")
	v.Enum("moda", payload.Moda, voyages.Modas, "must be kapal or truk")
	v.Required("asal", payload.Asal, "is required")
	v.Required("tujuan", payload.Tujuan, "is required")
	etd, _ := v.Date("etd", payload.ETD, h.Loc)
	eta, _ := v.Date("eta", payload.ETA, h.Loc)
	v.DateOrder("etd", etd, "eta", eta)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return voyages.Input{}, false
	}
	return voyages.Input{
		Kode:    payload.Kode,
		Moda:    payload.Moda,
		FleetID: payload.FleetID,
		Asal:    payload.Asal,
		Tujuan:  payload.Tujuan,
		ETD:     etd,
		ETA:     eta,
		Catatan: payload.Catatan,
	}, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, voyages.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "voyage not found", reqID)
	case errors.Is(err, transactions.ErrNotFound):
		api.Fail(w, http.StatusBadRequest, "invalid_reference", err.Error(), reqID)
	case errors.Is(err, voyages.ErrScheduleOrder):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
	case errors.Is(err, voyages.ErrInvalidTransition),
		errors.Is(err, voyages.ErrNotScheduled),
		errors.Is(err, voyages.ErrNotAssigned),
		errors.Is(err, transactions.ErrCancelled),
		errors.Is(err, transactions.ErrOnVoyage):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "voyage_failed", "voyage operation failed", reqID)
	}
}
