package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eduvance/eduvance-backend/internal/models"
	"github.com/eduvance/eduvance-backend/internal/pkg/metrics"
	"github.com/eduvance/eduvance-backend/internal/repository"
	"github.com/eduvance/eduvance-backend/internal/supabase"
)

// SessionCookie is the access-token cookie set by login and read on page
// routes. The name matches what the Supabase JS client uses, so sessions
// created by either side are interchangeable.
const SessionCookie = "sb-access-token"

// UserAPI validates an access token against the auth service and returns the
// user it belongs to. Implemented by supabase.Client.
type UserAPI interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// StaffLookup fetches the staff record for an authenticated user.
// Implemented by the repository.
type StaffLookup interface {
	GetStaffUser(ctx context.Context, userID string) (*models.StaffUser, error)
}

// Resolver turns an incoming request into a Session, or nil when the request
// carries no usable credential. Resolution always fails closed: any error on
// the way to a session yields nil, and the distinction between "no session"
// and "auth service down" lives in metrics and logs only.
type Resolver struct {
	api     UserAPI
	staff   StaffLookup
	timeout time.Duration
	log     *slog.Logger
}

func NewResolver(api UserAPI, staff StaffLookup, timeout time.Duration, log *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{api: api, staff: staff, timeout: timeout, log: log}
}

// Resolve extracts a credential from the request and resolves it to a
// session. A nil session with a nil error means the request is anonymous.
func (r *Resolver) Resolve(req *http.Request) *Session {
	token := TokenFromRequest(req)
	if token == "" {
		metrics.AuthResolutionsTotal.WithLabelValues("no_session").Inc()
		return nil
	}
	if !tokenLooksValid(token) {
		// Malformed or expired tokens are dropped locally. GoTrue would
		// reject them anyway; skipping the round trip keeps garbage
		// credentials from counting against the auth service.
		metrics.AuthResolutionsTotal.WithLabelValues("no_session").Inc()
		return nil
	}

	ctx, cancel := context.WithTimeout(req.Context(), r.timeout)
	defer cancel()

	user, err := r.api.GetUser(ctx, token)
	if errors.Is(err, supabase.ErrUnauthorized) {
		metrics.AuthResolutionsTotal.WithLabelValues("no_session").Inc()
		return nil
	}
	if err != nil {
		metrics.AuthResolutionsTotal.WithLabelValues("upstream_error").Inc()
		metrics.UpstreamRequestTotal.WithLabelValues("gotrue", "error").Inc()
		r.log.Warn("session resolution failed upstream", "error", err)
		return nil
	}
	metrics.UpstreamRequestTotal.WithLabelValues("gotrue", "ok").Inc()

	session := &Session{UserID: user.ID, Email: user.Email}
	staff, err := r.staff.GetStaffUser(ctx, user.ID)
	switch {
	case err == nil:
		session.Username = staff.Username
		session.Role = staff.Role
	case errors.Is(err, repository.ErrNotFound):
		// Authenticated but not staff. The session stands with tier 0.
	default:
		// If the staff directory cannot answer, the user cannot be proven
		// staff, so the whole resolution fails closed.
		metrics.AuthResolutionsTotal.WithLabelValues("upstream_error").Inc()
		r.log.Warn("staff lookup failed", "user_id", user.ID, "error", err)
		return nil
	}

	metrics.AuthResolutionsTotal.WithLabelValues("ok").Inc()
	return session
}

// TokenFromRequest pulls the access token from the Authorization header
// (API calls) or the session cookie (page loads). The header wins when both
// are present.
func TokenFromRequest(req *http.Request) string {
	if h := req.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := req.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// tokenLooksValid checks the token is a well-formed, unexpired JWT without
// verifying its signature. GoTrue remains the authority on validity.
func tokenLooksValid(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp != nil && exp.Before(time.Now()) {
		return false
	}
	return true
}
