package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Environment selects the CORS allow-list and cookie security defaults.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var (
	supabaseURLPattern = regexp.MustCompile(`^https://[a-zA-Z0-9-]+\.supabase\.co$`)
	guildIDPattern     = regexp.MustCompile(`^\d{17,19}$`)
)

// Supabase keys are JWTs. Anything that does not look like one is a
// misconfiguration we refuse to start with, rather than running with auth
// silently broken.
const (
	supabaseKeyPrefix = "eyJ"
	supabaseKeyMinLen = 100
)

type Config struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"` // development | production
	LogLevel    string `mapstructure:"log_level"`

	// Supabase project credentials. URL and keys are shape-validated at startup.
	SupabaseURL        string `mapstructure:"supabase_url"`
	SupabaseAnonKey    string `mapstructure:"supabase_anon_key"`
	SupabaseServiceKey string `mapstructure:"supabase_service_key"`

	// Relational store. postgres:// DSNs use lib/pq, anything else is treated
	// as a SQLite path (dev and tests).
	DatabaseURL string `mapstructure:"database_url"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// Rate limit store backend: memory | redis.
	RateLimitBackend string `mapstructure:"rate_limit_backend"`
	RedisAddr        string `mapstructure:"redis_addr"`

	// Discord guild member count proxy (/api/members). Optional: when unset the
	// endpoint answers 503, the rest of the service is unaffected.
	DiscordBotToken string `mapstructure:"discord_bot_token"`
	DiscordGuildID  string `mapstructure:"discord_guild_id"`

	RequestTimeoutSec  int `mapstructure:"request_timeout_sec"`
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec"`
	UpstreamTimeoutSec int `mapstructure:"upstream_timeout_sec"` // GoTrue and Discord calls

	// OTLP endpoint for traces; empty disables tracing.
	TracingEndpoint     string  `mapstructure:"tracing_endpoint"`
	TracingSamplingRate float64 `mapstructure:"tracing_sampling_rate"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/eduvance/")
	viper.AddConfigPath("$HOME/.eduvance")
	viper.AddConfigPath(".")

	// Defaults
	viper.SetDefault("port", 8080)
	viper.SetDefault("environment", EnvDevelopment)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("database_url", "./eduvance.db")
	viper.SetDefault("allowed_origins", nil)
	viper.SetDefault("rate_limit_backend", "memory")
	viper.SetDefault("redis_addr", "localhost:6379")
	viper.SetDefault("request_timeout_sec", 30)
	viper.SetDefault("shutdown_timeout_sec", 15)
	viper.SetDefault("upstream_timeout_sec", 10)
	viper.SetDefault("tracing_endpoint", "")
	viper.SetDefault("tracing_sampling_rate", 0.1)

	// Environment variables
	viper.SetEnvPrefix("EDUVANCE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = defaultOrigins(cfg.Environment)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultOrigins(environment string) []string {
	if environment == EnvProduction {
		return []string{"https://eduvance.au", "https://www.eduvance.au"}
	}
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}

// Validate checks credential material shape. A malformed Supabase URL or key
// must stop the process: proceeding would leave every protected route either
// broken or unprotected.
func (c *Config) Validate() error {
	var errs []string

	if c.SupabaseURL == "" {
		errs = append(errs, "supabase_url is required")
	} else if !supabaseURLPattern.MatchString(c.SupabaseURL) {
		errs = append(errs, "supabase_url must be a https://<ref>.supabase.co URL")
	}
	if msg := validateSupabaseKey("supabase_service_key", c.SupabaseServiceKey); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validateSupabaseKey("supabase_anon_key", c.SupabaseAnonKey); msg != "" {
		errs = append(errs, msg)
	}

	switch c.RateLimitBackend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Sprintf("rate_limit_backend must be memory or redis, got %q", c.RateLimitBackend))
	}

	// Optional, but reject garbage rather than passing it to the Discord API.
	if c.DiscordGuildID != "" && !guildIDPattern.MatchString(c.DiscordGuildID) {
		errs = append(errs, "discord_guild_id must be a 17-19 digit snowflake")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSupabaseKey(name, key string) string {
	if key == "" {
		return name + " is required"
	}
	if !strings.HasPrefix(key, supabaseKeyPrefix) || len(key) < supabaseKeyMinLen {
		return name + " does not look like a Supabase key"
	}
	return ""
}

// MembersEnabled reports whether the Discord member count proxy is configured.
func (c *Config) MembersEnabled() bool {
	return c.DiscordBotToken != "" && c.DiscordGuildID != ""
}
