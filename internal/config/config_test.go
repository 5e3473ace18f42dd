package config

import (
	"strings"
	"testing"
)

const testKey = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJpc3MiOiJzdXBhYmFzZSIsInJlZiI6ImFiY2RlZmdoIiwicm9sZSI6InNlcnZpY2Vfcm9sZSJ9.x"

func validConfig() *Config {
	return &Config{
		SupabaseURL:        "https://abcdefgh.supabase.co",
		SupabaseAnonKey:    testKey,
		SupabaseServiceKey: testKey,
		RateLimitBackend:   "memory",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_BadSupabaseURL(t *testing.T) {
	cases := []string{
		"",
		"http://abcdefgh.supabase.co",  // not https
		"https://abcdefgh.supabase.io", // wrong suffix
		"https://evil.com/.supabase.co",
	}
	for _, url := range cases {
		cfg := validConfig()
		cfg.SupabaseURL = url
		if err := cfg.Validate(); err == nil {
			t.Errorf("url %q: expected validation error", url)
		}
	}
}

func TestValidate_BadServiceKey(t *testing.T) {
	cfg := validConfig()
	cfg.SupabaseServiceKey = "not-a-jwt"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for malformed key")
	}
	if !strings.Contains(err.Error(), "supabase_service_key") {
		t.Errorf("error should name the offending key, got %v", err)
	}
}

func TestValidate_ShortKeyRejected(t *testing.T) {
	cfg := validConfig()
	cfg.SupabaseAnonKey = "eyJshort"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for short key")
	}
}

func TestValidate_BadGuildID(t *testing.T) {
	cfg := validConfig()
	cfg.DiscordGuildID = "not-a-snowflake"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for guild id")
	}
	cfg.DiscordGuildID = "123456789012345678"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid snowflake rejected: %v", err)
	}
}

func TestValidate_BadRateLimitBackend(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimitBackend = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestDefaultOrigins(t *testing.T) {
	prod := defaultOrigins(EnvProduction)
	if len(prod) != 2 || prod[0] != "https://eduvance.au" {
		t.Errorf("unexpected production origins: %v", prod)
	}
	dev := defaultOrigins(EnvDevelopment)
	for _, o := range dev {
		if !strings.Contains(o, "localhost") && !strings.Contains(o, "127.0.0.1") {
			t.Errorf("unexpected development origin: %s", o)
		}
	}
}

func TestMembersEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.MembersEnabled() {
		t.Error("members should be disabled without credentials")
	}
	cfg.DiscordBotToken = "token"
	cfg.DiscordGuildID = "123456789012345678"
	if !cfg.MembersEnabled() {
		t.Error("members should be enabled with credentials")
	}
}
