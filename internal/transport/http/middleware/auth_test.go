package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/domain/auth"
	"c2ms/internal/requestctx"
)

func TestAuthMiddlewareSetsUserAndActor(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Email: "ops@c2.test", Role: auth.RoleOperations}, time.Hour)
	require.NoError(t, err)

	called := false
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user, ok := GetUser(r.Context())
		require.True(t, ok)
		assert.Equal(t, "u1", user.UserID)
		assert.Equal(t, auth.RoleOperations, user.Role)
		assert.Equal(t, "ops@c2.test", requestctx.GetActor(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	token, err := auth.GenerateToken("s", auth.Claims{UserID: "u1", Role: auth.RoleViewer}, time.Hour)
	require.NoError(t, err)

	handler := Auth("s")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := GetUser(r.Context())
		assert.True(t, ok)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/live/transactions?access_token="+token, nil))
}

func TestAuthMiddlewareMissingOrBadToken(t *testing.T) {
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := GetUser(r.Context())
		assert.False(t, ok)
		assert.Equal(t, "system", requestctx.GetActor(r.Context()))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireUser(t *testing.T) {
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission(auth.PermPayrollApprove, auth.Permissions{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		role string
		want int
	}{
		{auth.RoleAdmin, http.StatusNoContent},
		{auth.RoleFinance, http.StatusNoContent},
		{auth.RoleOperations, http.StatusForbidden},
		{auth.RoleViewer, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u", Role: tc.role}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, tc.role)
	}
}
