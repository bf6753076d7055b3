package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"c2ms/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type window struct {
	hits  int
	reset time.Time
}

// fixedWindow counts hits per key inside a rolling fixed window. Expired keys
// are dropped once per window so the map tracks only recent callers.
type fixedWindow struct {
	mu        sync.Mutex
	name      string
	limit     int
	span      time.Duration
	key       RateLimitKeyFunc
	windows   map[string]*window
	nextPrune time.Time
}

func newFixedWindow(name string, limit int, span time.Duration, key RateLimitKeyFunc) *fixedWindow {
	if key == nil {
		key = actorOrIPKey
	}
	return &fixedWindow{name: name, limit: limit, span: span, key: key, windows: map[string]*window{}}
}

// RateLimit caps every request per signed-in user, or per client IP for
// anonymous calls.
func RateLimit(limit int, span time.Duration) func(http.Handler) http.Handler {
	fw := newFixedWindow("global", limit, span, actorOrIPKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fw.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// sensitiveRoute marks a mutation that moves money, issues documents or
// spends model quota. Patterns use path.Match syntax relative to /api/v1.
type sensitiveRoute struct {
	pattern string
	login   bool
}

var sensitiveRoutes = []sensitiveRoute{
	{pattern: "/auth/login", login: true},
	{pattern: "/chat"},
	{pattern: "/invoices/from-transactions"},
	{pattern: "/invoices/sweep-overdue"},
	{pattern: "/invoices/*/pay"},
	{pattern: "/invoices/*/void"},
	{pattern: "/payroll/preview"},
	{pattern: "/payroll/*/generate"},
	{pattern: "/payroll/*/approve"},
	{pattern: "/payroll/*/pay"},
}

// SensitiveMutationRateLimit applies tighter limits on top of RateLimit:
// logins get a quarter of baseLimit per IP and per submitted email, other
// sensitive mutations half of it per user.
func SensitiveMutationRateLimit(baseLimit int, span time.Duration) func(http.Handler) http.Handler {
	loginByIP := newFixedWindow("login-ip", max(baseLimit/4, 1), span, clientIPKey)
	loginByEmail := newFixedWindow("login-email", max(baseLimit/4, 1), span, loginEmailKey)
	mutations := newFixedWindow("mutation", max(baseLimit/2, 1), span, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, ok := matchSensitive(r)
			switch {
			case !ok:
			case route.login:
				if !loginByIP.allow(w, r) || !loginByEmail.allow(w, r) {
					return
				}
			default:
				if !mutations.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func matchSensitive(r *http.Request) (sensitiveRoute, bool) {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return sensitiveRoute{}, false
	}
	p := strings.TrimPrefix(r.URL.Path, "/api/v1")
	p = "/" + strings.Trim(p, "/")
	for _, route := range sensitiveRoutes {
		if ok, _ := path.Match(route.pattern, p); ok {
			return route, true
		}
	}
	return sensitiveRoute{}, false
}

func (fw *fixedWindow) allow(w http.ResponseWriter, r *http.Request) bool {
	if fw.limit <= 0 {
		return true
	}
	key := fw.key(r)
	if key == "" {
		key = clientIPKey(r)
	}
	now := time.Now()

	fw.mu.Lock()
	fw.prune(now)
	win, ok := fw.windows[key]
	if !ok || !now.Before(win.reset) {
		win = &window{reset: now.Add(fw.span)}
		fw.windows[key] = win
	}
	win.hits++
	hits, reset := win.hits, win.reset
	fw.mu.Unlock()

	resetIn := ceilSeconds(reset.Sub(now))
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(fw.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(fw.limit-hits, 0)))
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if hits <= fw.limit {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	slog.Warn("rate limit exceeded",
		"limiter", fw.name,
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", fw.limit,
	)
	api.FailWithDetails(w, http.StatusTooManyRequests, "rate_limited", "too many requests",
		map[string]any{"retryAfterSeconds": max(resetIn, 1)}, GetRequestID(r.Context()))
	return false
}

// prune must be called with mu held.
func (fw *fixedWindow) prune(now time.Time) {
	if now.Before(fw.nextPrune) {
		return
	}
	for key, win := range fw.windows {
		if !now.Before(win.reset) {
			delete(fw.windows, key)
		}
	}
	fw.nextPrune = now.Add(fw.span)
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return "ip:" + ip
		}
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return "ip:" + host
	}
	return "ip:" + addr
}

// loginEmailKey peeks at the login body and restores it for the handler.
func loginEmailKey(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return clientIPKey(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 16<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return clientIPKey(r)
	}
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &body) != nil || strings.TrimSpace(body.Email) == "" {
		return clientIPKey(r)
	}
	return "email:" + strings.ToLower(strings.TrimSpace(body.Email))
}
