package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eduvance/eduvance-backend/internal/pkg/metrics"
	"github.com/eduvance/eduvance-backend/internal/ratelimit"
)

// rateLimitResponse is the 429 body. retryAfter is in seconds, mirroring the
// Retry-After header for clients that only read the JSON.
type rateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

// RateLimit enforces the sliding-window budget per client IP and route
// prefix. Requests on unlisted routes pass untouched.
func RateLimit(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			res, err := limiter.Check(r.Context(), ip, r.URL.Path)
			if err != nil {
				log.Warn("rate limit store error", "error", err, "path", r.URL.Path)
			}
			if res.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			metrics.RateLimitDeniedTotal.WithLabelValues(res.Route).Inc()
			retryAfter := int(res.RetryAfter.Seconds())
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(rateLimitResponse{
				Error:      "rate_limited",
				Message:    "Too many requests. Please try again later.",
				RetryAfter: retryAfter,
			})
		})
	}
}
