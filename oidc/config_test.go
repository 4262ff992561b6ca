package oidc

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{IssuerURL: "https://idp.example.com", ClientID: "client"}
	cfg.ApplyDefaults()

	if cfg.Leeway != 60*time.Second {
		t.Errorf("leeway = %v", cfg.Leeway)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("cache_ttl = %v", cfg.CacheTTL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("http_timeout = %v", cfg.HTTPTimeout)
	}
	if len(cfg.AllowedAlgs) != 1 || cfg.AllowedAlgs[0] != "RS256" {
		t.Errorf("allowed_algs = %v", cfg.AllowedAlgs)
	}
	if cfg.DiscoveryRetries != 3 {
		t.Errorf("discovery_retries = %d", cfg.DiscoveryRetries)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", nil, false},
		{"missing issuer", func(c *Config) { c.IssuerURL = "" }, true},
		{"issuer not a url", func(c *Config) { c.IssuerURL = "not a url" }, true},
		{"missing client id", func(c *Config) { c.ClientID = "" }, true},
		{"unsupported alg", func(c *Config) { c.AllowedAlgs = []string{"HS256"} }, true},
		{"negative leeway", func(c *Config) { c.Leeway = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{IssuerURL: "https://idp.example.com", ClientID: "client"}
			cfg.ApplyDefaults()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_ExpectedAudience(t *testing.T) {
	cfg := Config{ClientID: "client"}
	if cfg.ExpectedAudience() != "client" {
		t.Errorf("audience should default to client id")
	}
	cfg.Audience = "https://api.example.com"
	if cfg.ExpectedAudience() != "https://api.example.com" {
		t.Errorf("explicit audience should win")
	}
}

func TestConfig_Issuer_TrimsTrailingSlash(t *testing.T) {
	cfg := Config{IssuerURL: "https://idp.example.com/realms/main/"}
	if got := cfg.Issuer(); got != "https://idp.example.com/realms/main" {
		t.Errorf("issuer = %q", got)
	}
}

func TestConfig_String_MasksSecret(t *testing.T) {
	cfg := Config{
		IssuerURL:    "https://idp.example.com",
		ClientID:     "client",
		ClientSecret: "super-secret-value",
	}
	if s := cfg.String(); strings.Contains(s, "super-secret-value") {
		t.Errorf("client secret leaked into String(): %s", s)
	}
}
