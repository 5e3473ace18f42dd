package middleware

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/eduvance/eduvance-backend/internal/auth"
	"github.com/eduvance/eduvance-backend/internal/ratelimit"
)

// Gate is the full request policy chain in its fixed order:
//
//	SecureHeaders -> CORS -> RequestID -> StructuredLog -> Tracing
//	-> RateLimit -> Protect -> handler
//
// Security headers come first so every response carries them, including CORS
// preflights, 429s, and auth redirects. Rate limiting runs before session
// resolution so a flood of requests cannot flood the auth service.
type Gate struct {
	resolver SessionResolver
	policies *auth.PolicyTable
	limiter  *ratelimit.Limiter
	cors     *cors.Cors
	log      *slog.Logger
}

func NewGate(resolver SessionResolver, policies *auth.PolicyTable, limiter *ratelimit.Limiter, allowedOrigins []string, log *slog.Logger) *Gate {
	return &Gate{
		resolver: resolver,
		policies: policies,
		limiter:  limiter,
		cors: cors.New(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           600,
		}),
		log: log,
	}
}

// Wrap applies the chain around the router.
func (g *Gate) Wrap(handler http.Handler) http.Handler {
	h := Protect(g.resolver, g.policies)(handler)
	h = RateLimit(g.limiter, g.log)(h)
	h = Tracing(h)
	h = StructuredLog(h)
	h = RequestID(h)
	h = g.cors.Handler(h)
	return SecureHeaders(h)
}
