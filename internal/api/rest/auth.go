package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eduvance/eduvance-backend/internal/auth"
	"github.com/eduvance/eduvance-backend/internal/repository"
	"github.com/eduvance/eduvance-backend/internal/supabase"
)

// Login handles POST /api/auth/login. Credentials go to GoTrue; on success
// the user must also hold a staff record, otherwise the session is discarded
// with a 403. The access token is returned in the body for API clients and
// set as an HttpOnly cookie for the page surface.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "email and password are required.")
		return
	}

	result, err := h.authSvc.SignInWithPassword(r.Context(), req.Email, req.Password)
	if errors.Is(err, supabase.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid email or password.")
		return
	}
	if err != nil {
		h.log.Error("login upstream", "error", err)
		respondError(w, http.StatusBadGateway, ErrCodeUpstream, "Authentication service unavailable.")
		return
	}

	staff, err := h.repo.GetStaffUser(r.Context(), result.User.ID)
	if errors.Is(err, repository.ErrNotFound) {
		// Valid account, but not staff. Don't hand out a portal session.
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "This account does not have staff access.")
		return
	}
	if err != nil {
		h.log.Error("login staff lookup", "error", err)
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Could not verify staff access.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    result.AccessToken,
		Path:     "/",
		MaxAge:   result.ExpiresIn,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": result.AccessToken,
		"expires_in":   result.ExpiresIn,
		"user": map[string]string{
			"id":       staff.ID,
			"username": staff.Username,
			"role":     staff.Role,
		},
	})
}

// Logout handles POST /api/auth/logout. The upstream revocation is best
// effort; the cookie is cleared regardless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		if err := h.authSvc.SignOut(r.Context(), token); err != nil {
			h.log.Warn("logout upstream", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
