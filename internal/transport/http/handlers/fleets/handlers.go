package fleetshandler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/fleets"
	"c2ms/internal/platform/period"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

// defaultDueWindowDays is how far ahead service-due looks without ?days=.
const defaultDueWindowDays = 14

type Handler struct {
	Service *fleets.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Loc     *time.Location
	Now     func() time.Time
}

func NewHandler(service *fleets.Service, perms middleware.PermissionStore, auditSvc *audit.Service, loc *time.Location) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Loc: loc, Now: time.Now}
}

type fleetPayload struct {
	Nama             string `json:"nama"`
	Jenis            string `json:"jenis"`
	Nomor            string `json:"nomor"`
	Kapasitas        string `json:"kapasitas"`
	Status           string `json:"status"`
	ServisBerikutnya string `json:"servisBerikutnya"`
	Catatan          string `json:"catatan"`
}

type maintenancePayload struct {
	Tanggal          string          `json:"tanggal"`
	Deskripsi        string          `json:"deskripsi"`
	Biaya            decimal.Decimal `json:"biaya"`
	Odometer         int64           `json:"odometer"`
	ServisBerikutnya string          `json:"servisBerikutnya"`
	RecordExpense    bool            `json:"recordExpense"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fleets", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/service-due", h.handleServiceDue)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/{fleetID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Put("/{fleetID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Delete("/{fleetID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/{fleetID}/maintenance", h.handleMaintenance)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "fleet_list_failed", "failed to list fleets", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleServiceDue(w http.ResponseWriter, r *http.Request) {
	days := defaultDueWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			api.Fail(w, http.StatusBadRequest, "invalid_query", "days must be a non-negative integer", middleware.GetRequestID(r.Context()))
			return
		}
		days = v
	}
	cutoff := period.StartOfDay(h.Now(), h.Loc).AddDate(0, 0, days+1).Add(-time.Nanosecond)
	out, err := h.Service.ServiceDue(r.Context(), cutoff)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "fleet_list_failed", "failed to list fleets", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	f, err := h.Service.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "fleet.create", "fleet", f.ID, nil, f)
	api.Created(w, f, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	f, err := h.Service.Get(r.Context(), chi.URLParam(r, "fleetID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, f, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fleetID")
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	f, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "fleet.update", "fleet", id, nil, f)
	api.Success(w, f, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fleetID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "fleet.delete", "fleet", id, nil, nil)
	api.Deleted(w, id, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fleetID")
	var payload maintenancePayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("deskripsi", payload.Deskripsi, "is required")
	v.NonNegative("biaya", payload.Biaya)
	tanggal := v.OptionalDate("tanggal", payload.Tanggal, h.Loc)
	next := v.OptionalDate("servisBerikutnya", payload.ServisBerikutnya, h.Loc)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if tanggal.IsZero() {
		tanggal = period.StartOfDay(h.Now(), h.Loc)
	}
	in := fleets.MaintenanceInput{
		Maintenance: fleets.Maintenance{
			Tanggal:   tanggal,
			Deskripsi: payload.Deskripsi,
			Biaya:     payload.Biaya,
			Odometer:  payload.Odometer,
		},
		RecordExpense: payload.RecordExpense,
	}
	if !next.IsZero() {
		in.ServisBerikutnya = &next
	}
	f, err := h.Service.AddMaintenance(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "fleet.maintenance", "fleet", id, nil, f.Maintenance[0])
	api.Created(w, f, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (fleets.Input, bool) {
	var payload fleetPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return fleets.Input{}, false
	}
	v := shared.NewValidator()
	v.Required("nama", payload.Nama, "is required")
	v.Required("jenis", payload.Jenis, "is required")
	v.Enum("jenis", payload.Jenis, fleets.Jenises, "must be kapal or truk")
	v.Enum("status", payload.Status, fleets.Statuses, "unknown fleet status")
	next := v.OptionalDate("servisBerikutnya", payload.ServisBerikutnya, h.Loc)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return fleets.Input{}, false
	}
	in := fleets.Input{
		Nama:      payload.Nama,
		Jenis:     payload.Jenis,
		Nomor:     payload.Nomor,
		Kapasitas: payload.Kapasitas,
		Status:    payload.Status,
		Catatan:   payload.Catatan,
	}
	if !next.IsZero() {
		in.ServisBerikutnya = &next
	}
	return in, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	if errors.Is(err, fleets.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "fleet not found", reqID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "fleet_failed", "fleet operation failed", reqID)
}
