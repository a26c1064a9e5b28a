package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"barberbook/internal/apperr"
	"barberbook/internal/httpx"
	"barberbook/internal/ratelimit"
)

// NewRateLimitHandler returns a middleware that budgets requests per client
// IP over a fixed window. Denials go through the shared error responder so
// they carry the same envelope as every other failure. A broken limiter
// backend fails open: losing rate limiting is preferable to rejecting all
// traffic when Redis is down.
//
// Wire it after chimiddleware.RealIP so r.RemoteAddr holds the client IP.
func NewRateLimitHandler(limiter ratelimit.Limiter, limit int, window time.Duration, respond *httpx.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := limiter.Allow(r.Context(), "ip:"+clientIP(r), limit, window)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			writeRateLimitHeaders(w, decision)
			if !decision.Allowed {
				respond.Error(w, r, apperr.New(apperr.KindRateLimited, "Too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the requesting client's IP without the source port.
// chimiddleware.RealIP rewrites RemoteAddr from forwarding headers when one
// is present; a direct connection keeps the host:port form, and two
// connections from the same host must share one budget.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	if d.Limit > 0 {
		w.Header().Set("RateLimit-Limit", strconv.Itoa(d.Limit))
	}
	if d.Remaining >= 0 {
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
	}
	if !d.ResetAt.IsZero() {
		w.Header().Set("RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
		if !d.Allowed {
			retryAfter := int64(time.Until(d.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}
