package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("default port: %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("default gin mode: %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("default base path: %q", cfg.APIBasePath)
	}
	if cfg.Session.CookieName != "sessionid" {
		t.Fatalf("default cookie name: %q", cfg.Session.CookieName)
	}
	if cfg.Session.TTL != 14*24*time.Hour {
		t.Fatalf("default session ttl: %v", cfg.Session.TTL)
	}
	if cfg.Session.RedisAddr != "" {
		t.Fatalf("redis must be opt-in, got %q", cfg.Session.RedisAddr)
	}
	if !cfg.SeedReferenceData {
		t.Fatalf("reference data seeding should default on")
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("default idempotency ttl: %v", cfg.IdempotencyTTL)
	}
}

func TestLoad_NormalizesAndValidates(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	t.Setenv("API_BASE_PATH", "api/v2/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("warning should normalize to warn, got %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("unknown gin mode should fall back to release, got %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("base path should gain leading and lose trailing slash, got %q", cfg.APIBasePath)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"LOG_LEVEL":      "verbose",
		"SESSION_TTL":    "-1h",
		"SESSION_COOKIE": " ",
		"RATE_BURST":     "0",
		"REDIS_DB":       "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%q", key, val)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected split: %#v", got)
	}
	if splitCSV("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}
