package expenseshandler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/expenses"
	"c2ms/internal/platform/csvexport"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

// maxListLimit caps a single page of ?limit= on list endpoints.
const maxListLimit = 500

type Handler struct {
	Service *expenses.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Loc     *time.Location
	Now     func() time.Time
}

func NewHandler(service *expenses.Service, perms middleware.PermissionStore, auditSvc *audit.Service, loc *time.Location) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Loc: loc, Now: time.Now}
}

type expensePayload struct {
	Tanggal    string          `json:"tanggal"`
	Kategori   string          `json:"kategori"`
	Keterangan string          `json:"keterangan"`
	Jumlah     decimal.Decimal `json:"jumlah"`
	Metode     string          `json:"metode"`
	VoyageID   string          `json:"voyageId"`
	FleetID    string          `json:"fleetId"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/expenses", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/export.csv", h.handleExport)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/{expenseID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Put("/{expenseID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Delete("/{expenseID}", h.handleDelete)
	})
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) (expenses.Filter, bool) {
	q := r.URL.Query()
	f := expenses.Filter{
		Kategori: q.Get("kategori"),
		VoyageID: q.Get("voyageId"),
		FleetID:  q.Get("fleetId"),
	}
	if q.Get("period") != "" || q.Get("month") != "" || q.Get("start") != "" || q.Get("end") != "" {
		rng, err := shared.ParseRange(r, h.Now(), h.Loc)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
			return f, false
		}
		f.Range = &rng
	}
	return f, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	out, err := h.Service.List(r.Context(), f)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "expense_list_failed", "failed to list expenses", middleware.GetRequestID(r.Context()))
		return
	}
	shared.WritePage(w, r, out, maxListLimit)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	out, err := h.Service.List(r.Context(), f)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "expense_export_failed", "failed to export expenses", middleware.GetRequestID(r.Context()))
		return
	}
	if err := csvexport.Serve(w, "pengeluaran.csv", expenses.ExportRows(out)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "expense_export_failed", "failed to export expenses", middleware.GetRequestID(r.Context()))
	}
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
	shared.Audit(r, h.Audit, "expense.create", "expense", e.ID, nil, e)
	api.Created(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.Get(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "expenseID")
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
	shared.Audit(r, h.Audit, "expense.update", "expense", id, before, e)
	api.Success(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "expenseID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "expense.delete", "expense", id, nil, nil)
	api.Deleted(w, id, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (expenses.Input, bool) {
	var payload expensePayload
	if !shared.DecodeJSON(w, r, &payload) {
		return expenses.Input{}, false
	}
	v := shared.NewValidator()
	tanggal := v.OptionalDate("tanggal", payload.Tanggal, h.Loc)
	kategori := v.Enum("kategori", payload.Kategori, expenses.Kategoris, "unknown expense category")
	metode := v.Enum("metode", payload.Metode, expenses.Metodes, "must be Cash or Transfer")
	v.Positive("jumlah", payload.Jumlah)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return expenses.Input{}, false
	}
	return expenses.Input{
		Tanggal:    tanggal,
		Kategori:   kategori,
		Keterangan: payload.Keterangan,
		Jumlah:     payload.Jumlah,
		Metode:     metode,
		VoyageID:   payload.VoyageID,
		FleetID:    payload.FleetID,
	}, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, expenses.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "expense not found", reqID)
	case errors.Is(err, expenses.ErrPayrollExpense):
		api.Fail(w, http.StatusConflict, "payroll_expense", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "expense_failed", "expense operation failed", reqID)
	}
}
