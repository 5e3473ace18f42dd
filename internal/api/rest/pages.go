package rest

import (
	"fmt"
	"html"
	"net/http"

	"github.com/eduvance/eduvance-backend/internal/auth"
)

// Page handlers are deliberately minimal. The frontend renders the real
// pages; these exist so the dashboard and login routes answer something when
// the gate lets a request through (or redirects one here).

// StaffAccessPage handles GET /staffAccess
func (h *Handler) StaffAccessPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!doctype html><title>Staff Access</title><h1>Staff sign in</h1>`)
}

// DashboardPage handles the /dashboard routes.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	name := "staff member"
	if s := auth.SessionFromContext(r.Context()); s != nil && s.Username != "" {
		name = s.Username
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html><title>Dashboard</title><h1>Welcome, %s</h1>`, html.EscapeString(name))
}
