package middleware

import (
	"context"
	"net/http"
	"strings"

	"c2ms/internal/domain/auth"
	"c2ms/internal/requestctx"
	"c2ms/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Auth resolves a bearer token into the request user. Requests without a
// valid token pass through anonymously; RequireUser rejects them later.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithUser(r.Context(), auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken reads the Authorization header, falling back to the
// access_token query parameter used by websocket clients.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return ""
		}
		return parts[1]
	}
	return r.URL.Query().Get("access_token")
}

// WithUser stores the user and stamps the actor used by domain services.
func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUser, user)
	return requestctx.WithActor(ctx, user.Email)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
