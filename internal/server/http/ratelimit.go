package httpserver

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/helixir/apartment-listing-service/internal/observability"
)

// RateLimiter wraps a token bucket shared by every request the server handles.
// It is safe for concurrent use because rate.Limiter is.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter admitting ratePerSecond requests on
// average with bursts of up to burst requests.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// Allow reports whether one more request may proceed now, consuming a token if so.
func (l *RateLimiter) Allow() bool {
	return l.limiter.Allow()
}

// rateLimitMiddleware rejects requests with 429 once the bucket is empty.
// CORS preflights are never limited.
func rateLimitMiddleware(l *RateLimiter, m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodOptions && !l.Allow() {
				m.RecordRateLimited()
				w.Header().Set("Retry-After", "1")
				writeJSON(w, r, http.StatusTooManyRequests, messageResponse{Message: "Too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
