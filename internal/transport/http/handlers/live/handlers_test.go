package livehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/domain/auth"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/metrics"
	"c2ms/internal/transport/http/middleware"
)

func newLiveServer(t *testing.T, role string) (*httptest.Server, docstore.Backend) {
	t.Helper()
	backend := docstore.NewMemory()
	h := NewHandler(backend, auth.Permissions{}, metrics.New(), nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if role != "" {
				req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "u-1", Email: role + "@c2ms.local", Role: role}))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.RegisterRoutes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, backend
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestLivePushesPutsWithDocument(t *testing.T) {
	ts, backend := newLiveServer(t, auth.RoleOperations)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/live/clients"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Subscription is registered before the upgrade completes.
	require.NoError(t, backend.Put(context.Background(), docstore.Clients, "c-1", json.RawMessage(`{"id":"c-1","nama":"PT Laut"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, docstore.Clients, evt.Collection)
	assert.Equal(t, "c-1", evt.ID)
	assert.Equal(t, docstore.OpPut, evt.Op)
	assert.JSONEq(t, `{"id":"c-1","nama":"PT Laut"}`, string(evt.Data))

	require.NoError(t, backend.Delete(context.Background(), docstore.Clients, "c-1"))
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, docstore.OpDelete, evt.Op)
	assert.Empty(t, evt.Data)
}

func TestLiveRejectsBeforeUpgrade(t *testing.T) {
	cases := []struct {
		name string
		role string
		path string
		want int
	}{
		{"anonymous", "", "/live/clients", http.StatusUnauthorized},
		{"missing permission", auth.RoleOperations, "/live/invoices", http.StatusForbidden},
		{"unknown collection", auth.RoleAdmin, "/live/secrets", http.StatusNotFound},
		{"metadata hidden", auth.RoleAdmin, "/live/" + docstore.Metadata, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts, _ := newLiveServer(t, tc.role)
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, tc.path), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(docstore.NewMemory(), auth.Permissions{}, nil, []string{"https://app.c2ms.id/"})
	cases := map[string]bool{
		"":                      true,
		"https://app.c2ms.id":   true,
		"http://backoffice.lan": true,
		"https://evil.example":  false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "http://backoffice.lan/api/v1/live/clients", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		assert.Equal(t, want, h.upgrader.CheckOrigin(req), origin)
	}
}
