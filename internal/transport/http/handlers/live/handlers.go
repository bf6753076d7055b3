package livehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"c2ms/internal/domain/auth"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/metrics"
	"c2ms/internal/transport/http/api"
	"c2ms/internal/transport/http/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// readPermission is the grant a user needs to follow each collection.
var readPermission = map[string]string{
	docstore.Clients:      auth.PermOperationsRead,
	docstore.Transactions: auth.PermOperationsRead,
	docstore.Voyages:      auth.PermOperationsRead,
	docstore.Fleets:       auth.PermOperationsRead,
	docstore.Expenses:     auth.PermFinanceRead,
	docstore.Invoices:     auth.PermFinanceRead,
	docstore.Payrolls:     auth.PermFinanceRead,
	docstore.Employees:    auth.PermHRRead,
	docstore.Attendance:   auth.PermHRRead,
}

// Event is one frame pushed to the client. Data carries the stored document
// for puts and is empty for deletes.
type Event struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Op         string          `json:"op"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type Handler struct {
	Backend  docstore.Backend
	Perms    middleware.PermissionStore
	Metrics  *metrics.Collector
	upgrader websocket.Upgrader
}

// NewHandler accepts upgrades from the same host or from one of the allowed
// origins ("*" allows any).
func NewHandler(backend docstore.Backend, perms middleware.PermissionStore, collector *metrics.Collector, allowedOrigins []string) *Handler {
	origins := map[string]bool{}
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	h := &Handler{Backend: backend, Perms: perms, Metrics: collector}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origins["*"] || origins[origin] {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/live/{collection}", h.handleLive)
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	perm, ok := readPermission[name]
	if !ok {
		api.Fail(w, http.StatusNotFound, api.CodeNotFound, "unknown collection", middleware.GetRequestID(r.Context()))
		return
	}
	if !middleware.Authorize(w, r, h.Perms, perm) {
		return
	}
	user, _ := middleware.GetUser(r.Context())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	changes, err := h.Backend.Subscribe(ctx, name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "subscribe_failed", "failed to subscribe", middleware.GetRequestID(r.Context()))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("live upgrade failed", "collection", name, "err", err)
		return
	}
	defer conn.Close()
	if h.Metrics != nil {
		h.Metrics.LiveClient(1)
		defer h.Metrics.LiveClient(-1)
	}
	slog.Info("live subscriber connected", "collection", name, "user", user.Email)

	go readPump(conn, cancel)
	if err := h.writePump(ctx, conn, changes); err != nil && !errors.Is(err, context.Canceled) {
		slog.Debug("live subscriber closed", "collection", name, "err", err)
	}
}

// readPump discards client frames and cancels the subscription once the
// peer goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, changes <-chan docstore.Change) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			evt := h.event(ctx, change)
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) event(ctx context.Context, change docstore.Change) Event {
	evt := Event{Collection: change.Collection, ID: change.ID, Op: change.Op}
	if change.Op != docstore.OpPut {
		return evt
	}
	rec, err := h.Backend.Get(ctx, change.Collection, change.ID)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		evt.Op = docstore.OpDelete
	case err != nil:
		slog.Warn("live document lookup failed", "collection", change.Collection, "id", change.ID, "err", err)
	default:
		evt.Data = rec.Data
	}
	return evt
}
