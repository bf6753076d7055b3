package payrollhandler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/employees"
	"c2ms/internal/domain/expenses"
	"c2ms/internal/domain/payroll"
	"c2ms/internal/platform/csvexport"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

type Handler struct {
	Service     *payroll.Service
	Perms       middleware.PermissionStore
	Audit       *audit.Service
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *payroll.Service, perms middleware.PermissionStore, auditSvc *audit.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Idempotency: idem}
}

type generatePayload struct {
	Inputs map[string]payroll.Inputs `json:"inputs"`
}

type previewPayload struct {
	EmployeeID string         `json:"employeeId"`
	Period     string         `json:"period"`
	Inputs     payroll.Inputs `json:"inputs"`
}

type payPayload struct {
	Metode string `json:"metode"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/trend", h.handleTrend)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Post("/preview", h.handlePreview)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/{period}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Post("/{period}/generate", h.handleGenerate)
		r.With(middleware.RequirePermission(auth.PermPayrollApprove, h.Perms)).Post("/{period}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermPayrollApprove, h.Perms), middleware.Idempotent(h.Idempotency)).Post("/{period}/pay", h.handlePay)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/{period}/register.csv", h.handleRegister)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/{period}/payslips/{employeeID}.pdf", h.handlePayslip)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.Service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list payrolls", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			api.Fail(w, http.StatusBadRequest, "invalid_query", "months must be a positive integer", middleware.GetRequestID(r.Context()))
			return
		}
		n = v
	}
	out, err := h.Service.Trend(r.Context(), n)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_trend_failed", "failed to build payroll trend", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var payload previewPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Month("period", payload.Period, time.UTC)
	validInputs(v, "inputs", payload.Inputs)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	calc, err := h.Service.Preview(r.Context(), payload.EmployeeID, payload.Period, payload.Inputs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, calc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "period")
	var payload generatePayload
	if r.ContentLength != 0 && !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Month("period", month, time.UTC)
	for id, in := range payload.Inputs {
		validInputs(v, "inputs."+id, in)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	p, err := h.Service.Generate(r.Context(), month, payload.Inputs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "payroll.generate", "payroll", p.ID, nil, p.Totals)
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "period")
	p, err := h.Service.Approve(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "payroll.approve", "payroll", p.ID, nil, p.Totals)
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "period")
	var payload payPayload
	if r.ContentLength != 0 && !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	metode := v.Enum("metode", payload.Metode, expenses.Metodes, "must be Cash or Transfer")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	p, err := h.Service.Pay(r.Context(), month, metode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "payroll.pay", "payroll", p.ID, nil, map[string]any{"expenseId": p.ExpenseID, "net": p.Totals.Net})
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := csvexport.Serve(w, "payroll-"+p.Period+".csv", payroll.RegisterRows(p.Calculations)); err != nil {
		slog.Error("payroll register export failed", "period", p.Period, "err", err)
	}
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	calc, err := p.Calculation(chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.Service.RenderPayslip(&buf, p, calc); err != nil {
		slog.Error("payslip render failed", "period", p.Period, "employeeId", calc.EmployeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=slip-"+p.Period+"-"+calc.EmployeeID+".pdf")
	_, _ = w.Write(buf.Bytes())
}

func validInputs(v *shared.Validator, field string, in payroll.Inputs) {
	v.NonNegative(field+".commission", in.Commission)
	for _, d := range in.Deductions {
		v.NonNegative(field+".deductions", d.Amount)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payroll not found", reqID)
	case errors.Is(err, payroll.ErrNoCalculation):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusBadRequest, "unknown_employee", "employee not found", reqID)
	case errors.Is(err, payroll.ErrLocked),
		errors.Is(err, payroll.ErrNotApproved),
		errors.Is(err, payroll.ErrEmpty):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll operation failed", reqID)
	}
}
