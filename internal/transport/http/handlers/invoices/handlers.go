package invoiceshandler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/clients"
	"c2ms/internal/domain/invoices"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/jobs"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

// maxListLimit caps a single page of ?limit= on list endpoints.
const maxListLimit = 500

type Handler struct {
	Service *invoices.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Jobs    *jobs.Service
	Loc     *time.Location
	Now     func() time.Time

	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *invoices.Service, perms middleware.PermissionStore, auditSvc *audit.Service, jobsSvc *jobs.Service, idem *middleware.IdempotencyStore, loc *time.Location) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Jobs: jobsSvc, Idempotency: idem, Loc: loc, Now: time.Now}
}

type buildPayload struct {
	ClientID       string   `json:"clientId"`
	TransactionIDs []string `json:"transactionIds"`
	Tanggal        string   `json:"tanggal"`
	Catatan        string   `json:"catatan"`
}

type updatePayload struct {
	JatuhTempo string `json:"jatuhTempo"`
	Catatan    string `json:"catatan"`
}

type payPayload struct {
	Metode  string `json:"metode"`
	Tanggal string `json:"tanggal"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Post("/from-transactions", h.handleFromTransactions)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Post("/sweep-overdue", h.handleSweepOverdue)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/{invoiceID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Put("/{invoiceID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Delete("/{invoiceID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms), middleware.Idempotent(h.Idempotency)).Post("/{invoiceID}/pay", h.handlePay)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Post("/{invoiceID}/void", h.handleVoid)
		r.With(middleware.RequirePermission(auth.PermFinanceRead, h.Perms)).Get("/{invoiceID}/pdf", h.handlePDF)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.Service.List(r.Context(), invoices.Filter{Status: q.Get("status"), ClientID: q.Get("clientId")})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "invoice_list_failed", "failed to list invoices", middleware.GetRequestID(r.Context()))
		return
	}
	shared.WritePage(w, r, out, maxListLimit)
}

func (h *Handler) handleFromTransactions(w http.ResponseWriter, r *http.Request) {
	var payload buildPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("clientId", payload.ClientID, "is required")
	if len(payload.TransactionIDs) == 0 {
		v.Add("transactionIds", "must list at least one transaction")
	}
	tanggal := v.OptionalDate("tanggal", payload.Tanggal, h.Loc)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	inv, err := h.Service.FromTransactions(r.Context(), invoices.BuildInput{
		ClientID:       payload.ClientID,
		TransactionIDs: payload.TransactionIDs,
		Tanggal:        tanggal,
		Catatan:        payload.Catatan,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "invoice.create", "invoice", inv.ID, nil, inv)
	api.Created(w, inv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.Get(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, inv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "invoiceID")
	var payload updatePayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	jatuhTempo := v.OptionalDate("jatuhTempo", payload.JatuhTempo, h.Loc)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	inv, err := h.Service.Update(r.Context(), id, jatuhTempo, payload.Catatan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "invoice.update", "invoice", id, nil, payload)
	api.Success(w, inv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "invoiceID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "invoice.delete", "invoice", id, nil, nil)
	api.Deleted(w, id, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "invoiceID")
	var payload payPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("metode", payload.Metode, "is required")
	paidAt := v.OptionalDate("tanggal", payload.Tanggal, h.Loc)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if paidAt.IsZero() {
		paidAt = h.Now()
	}
	inv, err := h.Service.MarkPaid(r.Context(), id, payload.Metode, paidAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "invoice.pay", "invoice", id, nil, payload)
	api.Success(w, inv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleVoid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "invoiceID")
	inv, err := h.Service.Void(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "invoice.void", "invoice", id, nil, nil)
	api.Success(w, inv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.Get(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.Service.RenderPDF(&buf, inv); err != nil {
		slog.Error("invoice pdf render failed", "invoiceId", inv.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render invoice", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+inv.NoInvoice+".pdf")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleSweepOverdue(w http.ResponseWriter, r *http.Request) {
	run := func(ctx context.Context) (any, error) { return h.Service.SweepOverdue(ctx) }
	var (
		details any
		err     error
	)
	if h.Jobs != nil {
		details, err = h.Jobs.RunNow(r.Context(), jobs.JobInvoiceOverdue, run)
	} else {
		details, err = run(r.Context())
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "sweep_failed", "overdue sweep failed", middleware.GetRequestID(r.Context()))
		return
	}
	shared.Audit(r, h.Audit, "invoice.sweep_overdue", "invoice", "", nil, details)
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, invoices.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "invoice not found", reqID)
	case errors.Is(err, clients.ErrNotFound), errors.Is(err, transactions.ErrNotFound):
		api.Fail(w, http.StatusBadRequest, "invalid_reference", err.Error(), reqID)
	case errors.Is(err, invoices.ErrNoTransactions),
		errors.Is(err, invoices.ErrInvalidMetode),
		errors.Is(err, invoices.ErrDuplicateItem):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
	case errors.Is(err, invoices.ErrClientMismatch),
		errors.Is(err, invoices.ErrNotOpen),
		errors.Is(err, invoices.ErrPaid),
		errors.Is(err, transactions.ErrCancelled),
		errors.Is(err, transactions.ErrInvoiced):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "invoice_failed", "invoice operation failed", reqID)
	}
}
