package attendancehandler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"c2ms/internal/domain/attendance"
	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/employees"
	"c2ms/internal/platform/period"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Loc     *time.Location
	Now     func() time.Time
}

func NewHandler(service *attendance.Service, perms middleware.PermissionStore, auditSvc *audit.Service, loc *time.Location) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Loc: loc, Now: time.Now}
}

type clockPayload struct {
	EmployeeID string `json:"employeeId"`
	At         string `json:"at"`
	Lembur     bool   `json:"lembur"`
}

type shiftPayload struct {
	CheckIn  time.Time  `json:"checkIn"`
	CheckOut *time.Time `json:"checkOut"`
	Lembur   bool       `json:"lembur"`
}

type recordPayload struct {
	EmployeeID string         `json:"employeeId"`
	Tanggal    string         `json:"tanggal"`
	Status     string         `json:"status"`
	Shifts     []shiftPayload `json:"shifts"`
	Catatan    string         `json:"catatan"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermHRRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermHRWrite, h.Perms)).Post("/", h.handleRecord)
		r.With(middleware.RequirePermission(auth.PermHRWrite, h.Perms)).Post("/check-in", h.handleCheckIn)
		r.With(middleware.RequirePermission(auth.PermHRWrite, h.Perms)).Post("/check-out", h.handleCheckOut)
		r.With(middleware.RequirePermission(auth.PermHRRead, h.Perms)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermHRRead, h.Perms)).Get("/{attendanceID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermHRWrite, h.Perms)).Put("/{attendanceID}", h.handleRecord)
		r.With(middleware.RequirePermission(auth.PermHRWrite, h.Perms)).Delete("/{attendanceID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var rng *period.Range
	if q.Get("period") != "" || q.Get("month") != "" || q.Get("start") != "" || q.Get("end") != "" {
		parsed, err := shared.ParseRange(r, h.Now(), h.Loc)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		rng = &parsed
	}
	out, err := h.Service.List(r.Context(), q.Get("employeeId"), rng)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := shared.ParseRange(r, h.Now(), h.Loc)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	out, err := h.Service.Summary(r.Context(), rng)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_summary_failed", "failed to summarize attendance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"start": rng.Start,
		"end":   rng.End,
		"rows":  out,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	payload, at, ok := h.decodeClock(w, r)
	if !ok {
		return
	}
	a, err := h.Service.CheckIn(r.Context(), payload.EmployeeID, at, payload.Lembur)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "attendance.check_in", "attendance", a.ID, nil, payload)
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	payload, at, ok := h.decodeClock(w, r)
	if !ok {
		return
	}
	a, err := h.Service.CheckOut(r.Context(), payload.EmployeeID, at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "attendance.check_out", "attendance", a.ID, nil, payload)
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decodeClock(w http.ResponseWriter, r *http.Request) (clockPayload, time.Time, bool) {
	var payload clockPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return payload, time.Time{}, false
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	at := v.Timestamp("at", payload.At)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, time.Time{}, false
	}
	if at.IsZero() {
		at = h.Now()
	}
	return payload, at, true
}

// handleRecord writes a whole day. On PUT the id in the path must match the
// employee and date in the body.
func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("tanggal", payload.Tanggal, "is required")
	v.Required("status", payload.Status, "is required")
	status := v.Enum("status", payload.Status, attendance.Statuses, "unknown attendance status")
	if id := chi.URLParam(r, "attendanceID"); id != "" && id != attendance.DocID(payload.EmployeeID, payload.Tanggal) {
		v.Add("id", "does not match employeeId and tanggal")
	}
	shifts := make([]attendance.Shift, 0, len(payload.Shifts))
	for _, s := range payload.Shifts {
		if s.CheckIn.IsZero() {
			v.Add("shifts", "checkIn is required")
			continue
		}
		if s.CheckOut != nil && s.CheckOut.Before(s.CheckIn) {
			v.Add("shifts", "checkOut must not be before checkIn")
			continue
		}
		shifts = append(shifts, attendance.Shift{CheckIn: s.CheckIn, CheckOut: s.CheckOut, Lembur: s.Lembur})
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	a, err := h.Service.Record(r.Context(), attendance.RecordInput{
		EmployeeID: payload.EmployeeID,
		Tanggal:    payload.Tanggal,
		Status:     status,
		Shifts:     shifts,
		Catatan:    payload.Catatan,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "attendance.record", "attendance", a.ID, nil, a)
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.Get(r.Context(), chi.URLParam(r, "attendanceID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attendanceID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "attendance.delete", "attendance", id, nil, nil)
	api.Deleted(w, id, middleware.GetRequestID(r.Context()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", reqID)
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusBadRequest, "unknown_employee", "employee not found", reqID)
	case errors.Is(err, attendance.ErrInvalidStatus), errors.Is(err, attendance.ErrInvalidDate):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrInactiveEmployee):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "attendance operation failed", reqID)
	}
}
