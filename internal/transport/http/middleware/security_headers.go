package middleware

import (
	"net/http"
	"strings"
)

// contentSecurityPolicy lets the SPA open the live websocket and preview the
// invoice, payslip and tax PDFs it fetches as blobs in a same-origin frame.
const contentSecurityPolicy = "default-src 'self'; base-uri 'self'; form-action 'self'; " +
	"frame-ancestors 'self'; frame-src 'self' blob:; object-src 'self' blob:; " +
	"img-src 'self' data: blob:; style-src 'self' 'unsafe-inline'; script-src 'self'; connect-src 'self' ws: wss:"

func SecureHeaders(isProd bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("X-Frame-Options", "SAMEORIGIN")
			headers.Set("Referrer-Policy", "same-origin")
			headers.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			headers.Set("Content-Security-Policy", contentSecurityPolicy)
			headers.Set("Cross-Origin-Opener-Policy", "same-origin")
			// Financial figures and print documents must not linger in shared caches.
			if strings.HasPrefix(r.URL.Path, "/api/") {
				headers.Set("Cache-Control", "no-store")
			}
			if isProd {
				headers.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
