package reportshandler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"c2ms/internal/domain/attendance"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/reports"
	"c2ms/internal/platform/csvexport"
	"c2ms/internal/platform/jobs"
	"c2ms/internal/platform/period"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

type Handler struct {
	Service    *reports.Service
	Attendance *attendance.Service
	Jobs       *jobs.Service
	Perms      middleware.PermissionStore
	Now        func() time.Time
}

func NewHandler(service *reports.Service, attendanceSvc *attendance.Service, jobsSvc *jobs.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Attendance: attendanceSvc, Jobs: jobsSvc, Perms: perms, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard", h.handleDashboard)
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/profit-loss", h.handleProfitLoss)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/tax", h.handleTax)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/tax.csv", h.handleTaxCSV)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/tax.pdf", h.handleTaxPDF)
		r.With(middleware.RequirePermission(auth.PermHRRead, h.Perms)).Get("/attendance", h.handleAttendance)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/jobs", h.handleJobs)
	})
}

func (h *Handler) rangeOf(w http.ResponseWriter, r *http.Request) (period.Range, bool) {
	rng, err := shared.ParseRange(r, h.Now(), h.Service.Location())
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
		return period.Range{}, false
	}
	return rng, true
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}
	out, err := h.Service.Dashboard(r.Context(), rng)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}
	out, err := h.Service.ProfitLoss(r.Context(), rng)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profit_loss_failed", "failed to build profit and loss", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTax(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.tax(w, r)
	if !ok {
		return
	}
	api.Success(w, rep, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTaxCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.tax(w, r)
	if !ok {
		return
	}
	name := "ppn-" + rep.Start + ".csv"
	if err := csvexport.Serve(w, name, rep.CSVRows()); err != nil {
		slog.Error("tax csv export failed", "err", err)
	}
}

func (h *Handler) handleTaxPDF(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.tax(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.RenderTax(&buf, h.Service.Profile(), rep); err != nil {
		slog.Error("tax pdf render failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render tax report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=ppn-"+rep.Start+".pdf")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) tax(w http.ResponseWriter, r *http.Request) (reports.TaxReport, bool) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return reports.TaxReport{}, false
	}
	rep, err := h.Service.Tax(r.Context(), rng)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "tax_report_failed", "failed to build tax report", middleware.GetRequestID(r.Context()))
		return reports.TaxReport{}, false
	}
	return rep, true
}

func (h *Handler) handleAttendance(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.rangeOf(w, r)
	if !ok {
		return
	}
	rows, err := h.Attendance.Summary(r.Context(), rng)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_report_failed", "failed to build attendance report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"start": rng.Start,
		"end":   rng.End,
		"rows":  rows,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r, 50, 200)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_query", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	runs, err := h.Jobs.ListRuns(r.Context(), page.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_list_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}
