package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/eduvance/eduvance-backend/internal/auth"
	"github.com/eduvance/eduvance-backend/internal/pkg/metrics"
)

type authErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SessionResolver is what Protect needs from the auth layer. Implemented by
// auth.Resolver.
type SessionResolver interface {
	Resolve(r *http.Request) *auth.Session
}

// Protect resolves the request's session and enforces the route policy
// table. The resolved session lands in the context either way, so handlers
// on public routes can still personalize for logged-in users.
//
// Denials answer by surface: pages redirect to the policy's login or denied
// URL, API routes get a JSON error. Error bodies never say whether the
// failure was a missing session or an auth service outage.
func Protect(resolver SessionResolver, table *auth.PolicyTable) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy := table.Match(r.URL.Path)

			var session *auth.Session
			if policy != nil || hasCredential(r) {
				session = resolver.Resolve(r)
			}
			if session != nil {
				r = r.WithContext(auth.WithSession(r.Context(), session))
			}

			decision := auth.Authorize(policy, session)
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			metrics.AuthzDeniedTotal.WithLabelValues(string(decision.Reason)).Inc()
			if policy.Surface == auth.SurfacePage {
				target := policy.LoginURL
				if decision.Reason == auth.DenyInsufficientRole {
					target = policy.DeniedURL
				}
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			status := http.StatusForbidden
			message := "You do not have permission to access this resource."
			if decision.Reason == auth.DenyAuthRequired {
				status = http.StatusUnauthorized
				message = "Authentication required."
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(authErrorResponse{
				Error:   string(decision.Reason),
				Message: message,
			})
		})
	}
}

// hasCredential reports whether the request carries something resolvable.
// Public routes skip resolution entirely for anonymous requests, so the auth
// service sees no traffic for them.
func hasCredential(r *http.Request) bool {
	return auth.TokenFromRequest(r) != ""
}
