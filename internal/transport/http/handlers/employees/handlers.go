package employeeshandler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/employees"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

type Handler struct {
	Service *employees.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Loc     *time.Location
}

func NewHandler(service *employees.Service, perms middleware.PermissionStore, auditSvc *audit.Service, loc *time.Location) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Loc: loc}
}

type employeePayload struct {
	Nama         string          `json:"nama"`
	Jabatan      string          `json:"jabatan"`
	Telepon      string          `json:"telepon"`
	Email        string          `json:"email"`
	GajiPokok    decimal.Decimal `json:"gajiPokok"`
	UangHarian   decimal.Decimal `json:"uangHarian"`
	TarifLembur  decimal.Decimal `json:"tarifLembur"`
	Status       string          `json:"status"`
	TanggalMasuk string          `json:"tanggalMasuk"`
	Rekening     string          `json:"rekening"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermHRRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermHRWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermHRRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermHRWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermHRWrite, h.Perms)).Delete("/{employeeID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	e, err := h.Service.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "employee.create", "employee", e.ID, nil, e)
	api.Created(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "employee.update", "employee", id, before, e)
	api.Success(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "employee.delete", "employee", id, nil, nil)
	api.Deleted(w, id, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (employees.Input, bool) {
	var payload employeePayload
	if !shared.DecodeJSON(w, r, &payload) {
		return employees.Input{}, false
	}
	v := shared.NewValidator()
	v.Required("nama", payload.Nama, "is required")
	status := v.Enum("status", payload.Status, employees.Statuses, "must be aktif or nonaktif")
	v.NonNegative("gajiPokok", payload.GajiPokok)
	v.NonNegative("uangHarian", payload.UangHarian)
	v.NonNegative("tarifLembur", payload.TarifLembur)
	masuk := v.OptionalDate("tanggalMasuk", payload.TanggalMasuk, h.Loc)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return employees.Input{}, false
	}
	in := employees.Input{
		Nama:        payload.Nama,
		Jabatan:     payload.Jabatan,
		Telepon:     payload.Telepon,
		Email:       payload.Email,
		GajiPokok:   payload.GajiPokok,
		UangHarian:  payload.UangHarian,
		TarifLembur: payload.TarifLembur,
		Status:      status,
		Rekening:    payload.Rekening,
	}
	if !masuk.IsZero() {
		in.TanggalMasuk = &masuk
	}
	return in, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	if errors.Is(err, employees.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "employee_failed", "employee operation failed", reqID)
}
