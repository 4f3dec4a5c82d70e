package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// LineConfig holds LINE Messaging API credentials.
type LineConfig struct {
	ChannelSecret string `yaml:"channel_secret" envconfig:"LINE_CHANNEL_SECRET"`
	ChannelToken  string `yaml:"channel_token" envconfig:"LINE_CHANNEL_ACCESS_TOKEN"`
}

// ServerConfig specifies the webhook HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen" envconfig:"SERVER_LISTEN"`
	Port   int    `yaml:"port" envconfig:"SERVER_PORT"`
	// CallbackPath is the webhook endpoint path; defaults to /callback.
	CallbackPath string `yaml:"callback_path" envconfig:"SERVER_CALLBACK_PATH"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	KeysOrder string `yaml:"keys_order"`
	Dir       string `yaml:"dir"`
	BotFile   string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// SessionConfig controls the in-memory dialogue session store.
type SessionConfig struct {
	TTLMinutes   int `yaml:"ttl_minutes" envconfig:"SESSION_TTL_MINUTES"`
	SweepMinutes int `yaml:"sweep_minutes" envconfig:"SESSION_SWEEP_MINUTES"`
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// Sweep returns the interval between expired-session purges.
func (s SessionConfig) Sweep() time.Duration {
	return time.Duration(s.SweepMinutes) * time.Minute
}

// RateLimitConfig holds settings for per-user rate limiting.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

// Interval returns the minimum gap between handled messages per user.
func (r RateLimitConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMS) * time.Millisecond
}

// CatalogConfig points at the advisor catalog document.
type CatalogConfig struct {
	Path string `yaml:"path" envconfig:"CATALOG_PATH"`
	// Policy selects the matching strategy: "strict" (default) or "any".
	Policy string `yaml:"policy" envconfig:"CATALOG_POLICY"`
}

// MenusConfig points at the optional dialogue menus document.
// When empty, compiled-in defaults are used.
type MenusConfig struct {
	Path string `yaml:"path" envconfig:"MENUS_PATH"`
}

// Config aggregates the full bot configuration.
type Config struct {
	Line      LineConfig      `yaml:"line"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Menus     MenusConfig     `yaml:"menus"`
}

const (
	// PolicyStrict requires both category and detail tags to match.
	PolicyStrict = "strict"
	// PolicyAny accepts a record sharing either tag, first match wins.
	PolicyAny = "any"
)

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Line.ChannelSecret) == "" {
		return fmt.Errorf("line.channel_secret is required")
	}
	if strings.TrimSpace(cfg.Line.ChannelToken) == "" {
		return fmt.Errorf("line.channel_token is required")
	}

	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = "0.0.0.0"
	}
	if cfg.Server.Port < 0 {
		return fmt.Errorf("server.port must be >= 0 (0 selects PORT env or 8000)")
	}
	if cfg.Server.Port == 0 {
		// Hosting platforms commonly inject PORT.
		if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil || p <= 0 {
				return fmt.Errorf("invalid PORT value %q", raw)
			}
			cfg.Server.Port = p
		} else {
			cfg.Server.Port = 8000
		}
	}
	path := strings.TrimSpace(cfg.Server.CallbackPath)
	if path == "" {
		path = "/callback"
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("server.callback_path must start with '/'")
	}
	cfg.Server.CallbackPath = path

	if cfg.Session.TTLMinutes < 0 {
		return fmt.Errorf("session.ttl_minutes must be >= 0")
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 60
	}
	if cfg.Session.SweepMinutes < 0 {
		return fmt.Errorf("session.sweep_minutes must be >= 0")
	}
	if cfg.Session.SweepMinutes == 0 {
		cfg.Session.SweepMinutes = 10
	}

	if cfg.RateLimit.IntervalMS < 0 {
		return fmt.Errorf("rate_limit.interval_ms must be >= 0")
	}

	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		return fmt.Errorf("catalog.path is required")
	}
	policy := strings.ToLower(strings.TrimSpace(cfg.Catalog.Policy))
	if policy == "" {
		policy = PolicyStrict
	}
	switch policy {
	case PolicyStrict, PolicyAny:
	default:
		return fmt.Errorf("invalid catalog.policy %q; allowed: strict, any", cfg.Catalog.Policy)
	}
	cfg.Catalog.Policy = policy

	return nil
}
