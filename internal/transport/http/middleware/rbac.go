package middleware

import (
	"log/slog"
	"net/http"

	"c2ms/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(role, permission string) bool
}

// Authorize answers 401 or 403 and returns false unless the request carries a
// user whose role grants permission.
func Authorize(w http.ResponseWriter, r *http.Request, store PermissionStore, permission string) bool {
	user, ok := GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required", GetRequestID(r.Context()))
		return false
	}
	if !store.HasPermission(user.Role, permission) {
		slog.Info("permission denied",
			"requestId", GetRequestID(r.Context()),
			"user", user.Email,
			"role", user.Role,
			"permission", permission,
			"method", r.Method,
			"path", r.URL.Path,
		)
		api.Fail(w, http.StatusForbidden, api.CodeForbidden, "insufficient permissions", GetRequestID(r.Context()))
		return false
	}
	return true
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Authorize(w, r, store, permission) {
				next.ServeHTTP(w, r)
			}
		})
	}
}
