package transactionshandler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/clients"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/csvexport"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
	"c2ms/internal/transport/http/shared"
)

// maxListLimit caps a single page of ?limit= on list endpoints.
const maxListLimit = 500

type Handler struct {
	Service *transactions.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Loc     *time.Location
	Now     func() time.Time
}

func NewHandler(service *transactions.Service, perms middleware.PermissionStore, auditSvc *audit.Service, loc *time.Location) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Loc: loc, Now: time.Now}
}

type transactionPayload struct {
	Tanggal   string             `json:"tanggal"`
	ClientID  string             `json:"clientId"`
	Pengirim  transactions.Party `json:"pengirim"`
	Penerima  transactions.Party `json:"penerima"`
	Asal      string             `json:"asal"`
	Tujuan    string             `json:"tujuan"`
	Layanan   string             `json:"layanan"`
	Koli      int                `json:"koli"`
	Berat     decimal.Decimal    `json:"berat"`
	Volume    decimal.Decimal    `json:"volume"`
	IsiBarang string             `json:"isiBarang"`
	Jumlah    decimal.Decimal    `json:"jumlah"`
	KenaPajak bool               `json:"kenaPajak"`
	Pelunasan string             `json:"pelunasan"`
	Catatan   string             `json:"catatan"`
}

type statusPayload struct {
	Status string `json:"status"`
}

type pelunasanPayload struct {
	Pelunasan string `json:"pelunasan"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/search", h.handleSearch)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/recent", h.handleRecent)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/export.csv", h.handleExport)
		r.With(middleware.RequirePermission(auth.PermOperationsRead, h.Perms)).Get("/{transactionID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Put("/{transactionID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Delete("/{transactionID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/{transactionID}/status", h.handleStatus)
		r.With(middleware.RequirePermission(auth.PermOperationsWrite, h.Perms)).Post("/{transactionID}/cancel", h.handleCancel)
		r.With(middleware.RequirePermission(auth.PermFinanceWrite, h.Perms)).Post("/{transactionID}/pelunasan", h.handlePelunasan)
	})
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) (transactions.Filter, bool) {
	q := r.URL.Query()
	f := transactions.Filter{
		Status:    q.Get("status"),
		Pelunasan: q.Get("pelunasan"),
		ClientID:  q.Get("clientId"),
		Query:     q.Get("q"),
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
		api.Fail(w, http.StatusInternalServerError, "transaction_list_failed", "failed to list transactions", middleware.GetRequestID(r.Context()))
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
		api.Fail(w, http.StatusInternalServerError, "transaction_export_failed", "failed to export transactions", middleware.GetRequestID(r.Context()))
		return
	}
	if err := csvexport.Serve(w, "transaksi.csv", transactions.ExportRows(out)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "transaction_export_failed", "failed to export transactions", middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "q is required", middleware.GetRequestID(r.Context()))
		return
	}
	t, err := h.Service.Find(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := transactions.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	out, err := h.Service.Recent(r.Context(), limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "transaction_list_failed", "failed to list transactions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	details, ok := h.decodeDetails(w, r)
	if !ok {
		return
	}
	t, err := h.Service.Create(r.Context(), details)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "transaction.create", "transaction", t.ID, nil, t)
	api.Created(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.Get(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionID")
	details, ok := h.decodeDetails(w, r)
	if !ok {
		return
	}
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.Service.Update(r.Context(), id, details)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "transaction.update", "transaction", id, before, t)
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionID")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "transaction.delete", "transaction", id, nil, nil)
	api.Deleted(w, id, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionID")
	var payload statusPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	t, err := h.Service.SetStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "transaction.status", "transaction", id, nil, payload)
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionID")
	t, err := h.Service.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "transaction.cancel", "transaction", id, nil, nil)
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePelunasan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "transactionID")
	var payload pelunasanPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	t, err := h.Service.SetPelunasan(r.Context(), id, payload.Pelunasan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, "transaction.pelunasan", "transaction", id, nil, payload)
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decodeDetails(w http.ResponseWriter, r *http.Request) (transactions.Details, bool) {
	var payload transactionPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return transactions.Details{}, false
	}
	v := shared.NewValidator()
	tanggal := v.OptionalDate("tanggal", payload.Tanggal, h.Loc)
	if payload.ClientID == "" {
		v.Required("pengirim.nama", payload.Pengirim.Nama, "is required when clientId is empty")
	}
	v.Required("asal", payload.Asal, "is required")
	v.Required("tujuan", payload.Tujuan, "is required")
	v.Enum("layanan", payload.Layanan, transactions.Layanans, "must be darat or laut")
	v.Enum("pelunasan", payload.Pelunasan, transactions.Pelunasans, "must be Cash, Transfer or Pending")
	if payload.Koli < 0 {
		v.Add("koli", "must not be negative")
	}
	v.NonNegative("berat", payload.Berat)
	v.NonNegative("volume", payload.Volume)
	v.NonNegative("jumlah", payload.Jumlah)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return transactions.Details{}, false
	}
	return transactions.Details{
		Tanggal:   tanggal,
		ClientID:  payload.ClientID,
		Pengirim:  payload.Pengirim,
		Penerima:  payload.Penerima,
		Asal:      payload.Asal,
		Tujuan:    payload.Tujuan,
		Layanan:   payload.Layanan,
		Koli:      payload.Koli,
		Berat:     payload.Berat,
		Volume:    payload.Volume,
		IsiBarang: payload.IsiBarang,
		Jumlah:    payload.Jumlah,
		KenaPajak: payload.KenaPajak,
		Pelunasan: payload.Pelunasan,
		Catatan:   payload.Catatan,
	}, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, transactions.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "transaction not found", reqID)
	case errors.Is(err, clients.ErrNotFound):
		api.Fail(w, http.StatusBadRequest, "unknown_client", "client not found", reqID)
	case errors.Is(err, transactions.ErrInvalidStatus), errors.Is(err, transactions.ErrInvalidPelunasan):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
	case errors.Is(err, transactions.ErrInvalidTransition),
		errors.Is(err, transactions.ErrCancelled),
		errors.Is(err, transactions.ErrInvoiced),
		errors.Is(err, transactions.ErrOnVoyage):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "transaction_failed", "transaction operation failed", reqID)
	}
}
