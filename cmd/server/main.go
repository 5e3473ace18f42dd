package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/eduvance/eduvance-backend/internal/api/middleware"
	"github.com/eduvance/eduvance-backend/internal/api/rest"
	"github.com/eduvance/eduvance-backend/internal/auth"
	"github.com/eduvance/eduvance-backend/internal/config"
	"github.com/eduvance/eduvance-backend/internal/discord"
	"github.com/eduvance/eduvance-backend/internal/pkg/logger"
	"github.com/eduvance/eduvance-backend/internal/pkg/tracing"
	"github.com/eduvance/eduvance-backend/internal/ratelimit"
	"github.com/eduvance/eduvance-backend/internal/repository"
	"github.com/eduvance/eduvance-backend/internal/supabase"
)

func main() {
	log := logger.StdLogger()

	cfg, err := config.Load()
	if err != nil {
		// A malformed config must never start a portal with weakened
		// protection. Fail loudly.
		log.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	log.Info("configuration loaded", "port", cfg.Port, "environment", cfg.Environment)

	shutdownTracing, err := tracing.Init("eduvance-backend", cfg.TracingEndpoint, cfg.TracingSamplingRate)
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	} else {
		defer shutdownTracing()
	}

	repo, err := repository.New(cfg.DatabaseURL)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	if err := repo.RunMigrations(); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	log.Info("database ready")

	upstreamTimeout := time.Duration(cfg.UpstreamTimeoutSec) * time.Second
	supa := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, upstreamTimeout)
	resolver := auth.NewResolver(supa, repo, upstreamTimeout, log)

	var members rest.MemberCounter
	if cfg.MembersEnabled() {
		members = discord.New(cfg.DiscordBotToken, cfg.DiscordGuildID, upstreamTimeout)
	} else {
		log.Warn("discord credentials not configured, /api/members will answer 503")
	}

	policyTable, err := auth.NewPolicyTable(auth.DefaultPolicies())
	if err != nil {
		log.Error("protection table invalid", "error", err)
		os.Exit(1)
	}
	rateTable, err := ratelimit.NewPolicyTable(ratelimit.DefaultPolicies())
	if err != nil {
		log.Error("rate table invalid", "error", err)
		os.Exit(1)
	}
	limiter := ratelimit.NewLimiter(rateTable, newRateStore(cfg, log))
	defer limiter.Close()

	router := mux.NewRouter()
	handler := rest.NewHandler(repo, supa, members, cfg.Environment == "production", log)
	rest.SetupRoutes(router, handler)

	gate := middleware.NewGate(resolver, policyTable, limiter, cfg.AllowedOrigins, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      gate.Wrap(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown incomplete", "error", err)
	}
}

// newRateStore picks the rate limit backend. Redis shares windows across
// replicas; memory is for single instances and development.
func newRateStore(cfg *config.Config, log *slog.Logger) ratelimit.Store {
	if cfg.RateLimitBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Info("rate limiting via redis", "addr", cfg.RedisAddr)
		return ratelimit.NewRedisStore(client)
	}
	maxWindow := time.Minute
	for _, p := range ratelimit.DefaultPolicies() {
		if p.Window > maxWindow {
			maxWindow = p.Window
		}
	}
	return ratelimit.NewMemoryStore(time.Minute, maxWindow)
}
