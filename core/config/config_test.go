package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Line: LineConfig{
			ChannelSecret: "secret",
			ChannelToken:  "token",
		},
		Catalog: CatalogConfig{Path: "advisors.yaml"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Server.Listen != "0.0.0.0" {
		t.Errorf("listen = %q, want 0.0.0.0", cfg.Server.Listen)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.CallbackPath != "/callback" {
		t.Errorf("callback_path = %q, want /callback", cfg.Server.CallbackPath)
	}
	if cfg.Session.TTLMinutes != 60 || cfg.Session.SweepMinutes != 10 {
		t.Errorf("session defaults = %d/%d, want 60/10", cfg.Session.TTLMinutes, cfg.Session.SweepMinutes)
	}
	if cfg.Catalog.Policy != PolicyStrict {
		t.Errorf("policy = %q, want strict", cfg.Catalog.Policy)
	}
}

func TestNormalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing channel secret",
			mutate:  func(c *Config) { c.Line.ChannelSecret = "" },
			wantErr: "channel_secret",
		},
		{
			name:    "missing channel token",
			mutate:  func(c *Config) { c.Line.ChannelToken = " " },
			wantErr: "channel_token",
		},
		{
			name:    "missing catalog path",
			mutate:  func(c *Config) { c.Catalog.Path = "" },
			wantErr: "catalog.path",
		},
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "server.port must be >= 0",
		},
		{
			name:    "relative callback path",
			mutate:  func(c *Config) { c.Server.CallbackPath = "callback" },
			wantErr: "callback_path",
		},
		{
			name:    "negative session ttl",
			mutate:  func(c *Config) { c.Session.TTLMinutes = -5 },
			wantErr: "ttl_minutes",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RateLimit.IntervalMS = -1 },
			wantErr: "rate_limit",
		},
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.Catalog.Policy = "fuzzy" },
			wantErr: "catalog.policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Normalize(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizePolicyAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.Policy = " Any "
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Catalog.Policy != PolicyAny {
		t.Errorf("policy = %q, want any", cfg.Catalog.Policy)
	}
}
