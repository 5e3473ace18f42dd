// Package rest implements the portal's HTTP handlers.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eduvance/eduvance-backend/internal/discord"
	"github.com/eduvance/eduvance-backend/internal/repository"
	"github.com/eduvance/eduvance-backend/internal/supabase"
)

// AuthService is the slice of the Supabase client the handlers use.
type AuthService interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.SignInResult, error)
	SignOut(ctx context.Context, accessToken string) error
}

// MemberCounter is implemented by the Discord client. Nil when Discord
// credentials are not configured.
type MemberCounter interface {
	GuildMemberCount(ctx context.Context) (*discord.MemberCount, error)
}

// Repository is everything the handlers need from storage.
type Repository interface {
	repository.CatalogRepository
	repository.StaffDirectory
	repository.ContentRepository
	repository.ModerationRepository
	Ping(ctx context.Context) error
}

// Handler holds the handlers' dependencies.
type Handler struct {
	repo    Repository
	authSvc AuthService
	members MemberCounter
	secure  bool // secure session cookies; off for local dev over http
	log     *slog.Logger
}

func NewHandler(repo Repository, authSvc AuthService, members MemberCounter, secureCookies bool, log *slog.Logger) *Handler {
	return &Handler{repo: repo, authSvc: authSvc, members: members, secure: secureCookies, log: log}
}

// SetupRoutes configures API and page routes.
func SetupRoutes(router *mux.Router, h *Handler) {
	// Public API
	router.HandleFunc("/api/subjects", h.ListSubjects).Methods(http.MethodGet)
	router.HandleFunc("/api/exam-sessions", h.ListExamSessions).Methods(http.MethodGet)
	router.HandleFunc("/api/members", h.GetMemberCount).Methods(http.MethodGet)

	// Staff API (protection enforced by the middleware gate)
	router.HandleFunc("/api/resources", h.CreateResource).Methods(http.MethodPost)
	router.HandleFunc("/api/papers", h.CreatePaper).Methods(http.MethodPost)
	router.HandleFunc("/api/community-requests", h.ListCommunityRequests).Methods(http.MethodGet)
	router.HandleFunc("/api/community-requests/{id}", h.ReviewCommunityRequest).Methods(http.MethodPut)
	router.HandleFunc("/api/watermark", h.Watermark).Methods(http.MethodPost)

	// Auth
	router.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/logout", h.Logout).Methods(http.MethodPost)

	// Pages (gate redirect targets)
	router.HandleFunc("/staffAccess", h.StaffAccessPage).Methods(http.MethodGet)
	router.HandleFunc("/dashboard", h.DashboardPage).Methods(http.MethodGet)
	router.HandleFunc("/dashboard/staff", h.DashboardPage).Methods(http.MethodGet)
	router.HandleFunc("/dashboard/admin", h.DashboardPage).Methods(http.MethodGet)

	// Ops
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// Health reports liveness and storage reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.repo.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
