package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Version is reported in the user agent and the health endpoint.
const Version = "0.1.4"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Fetch     FetchConfig
	Store     StoreConfig
	Enhance   EnhanceConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication and per-listing action tokens.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of keys allowed to edit listings.
	APIKeys []string

	// NonceSecret signs per-listing action tokens. Required in release mode.
	NonceSecret string

	// NonceLifetime is how long an issued token stays valid (at least half of it).
	NonceLifetime time.Duration // default: 24h
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// FetchConfig controls the outbound website request.
type FetchConfig struct {
	// Timeout bounds the whole GET including redirects and body.
	Timeout time.Duration // default: 20s

	// MaxRedirects is the number of redirects followed automatically.
	MaxRedirects int // default: 5

	// MaxBodyBytes caps how much of the response body is read.
	MaxBodyBytes int64 // default: 10 MiB

	// Platform names the calling platform in the user agent.
	Platform string // default: "gpd-enhance/<Version>"

	// SiteURL is the directory site the requests are made on behalf of.
	SiteURL string
}

// UserAgent builds the descriptive user agent sent with every fetch.
func (f FetchConfig) UserAgent() string {
	return fmt.Sprintf("%s; %s (GPD Data Enhancement Plugin/%s)", f.Platform, f.SiteURL, Version)
}

// StoreConfig selects the listing metadata store.
type StoreConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string // default: "sqlite"

	// DSN is the SQLite database path.
	DSN string // default: "gpd-enhance.db"
}

// EnhanceConfig controls enhancement behavior outside of explicit requests.
type EnhanceConfig struct {
	// AutoScrape runs the primary website scrape when the host reports a
	// processed listing.
	AutoScrape bool // default: false

	// AutoScrapeTimeout bounds a detached auto-scrape run.
	AutoScrapeTimeout time.Duration // default: 30s
}

// WebhookConfig controls outbound event notifications.
type WebhookConfig struct {
	// URL receives events; empty disables delivery.
	URL string

	// Secret signs event bodies with HMAC-SHA256 when set.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("GPD_HOST", "0.0.0.0"),
			Port: envIntOr("GPD_PORT", 8080),
			Mode: envOr("GPD_MODE", "release"),
		},
		Auth: AuthConfig{
			Enabled:       envBoolOr("GPD_AUTH_ENABLED", true),
			APIKeys:       envSliceOr("GPD_API_KEYS", nil),
			NonceSecret:   os.Getenv("GPD_NONCE_SECRET"),
			NonceLifetime: envDurationOr("GPD_NONCE_LIFETIME", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("GPD_RATE_RPS", 2.0),
			Burst:             envIntOr("GPD_RATE_BURST", 5),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("GPD_FETCH_TIMEOUT", 20*time.Second),
			MaxRedirects: envIntOr("GPD_FETCH_MAX_REDIRECTS", 5),
			MaxBodyBytes: int64(envIntOr("GPD_FETCH_MAX_BODY", 10<<20)),
			Platform:     envOr("GPD_PLATFORM", "gpd-enhance/"+Version),
			SiteURL:      envOr("GPD_SITE_URL", "http://localhost"),
		},
		Store: StoreConfig{
			Driver: envOr("GPD_STORE_DRIVER", "sqlite"),
			DSN:    envOr("GPD_STORE_DSN", "gpd-enhance.db"),
		},
		Enhance: EnhanceConfig{
			AutoScrape:        envBoolOr("GPD_AUTO_SCRAPE", false),
			AutoScrapeTimeout: envDurationOr("GPD_AUTO_SCRAPE_TIMEOUT", 30*time.Second),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("GPD_WEBHOOK_URL"),
			Secret: os.Getenv("GPD_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("GPD_LOG_LEVEL", "info"),
			Format: envOr("GPD_LOG_FORMAT", "json"),
		},
	}
}

// Validate reports configuration that would make the service unusable.
func (c *Config) Validate() error {
	if c.Server.Mode == "release" && c.Auth.NonceSecret == "" {
		return fmt.Errorf("config: GPD_NONCE_SECRET is required in release mode")
	}
	if c.Fetch.MaxRedirects < 0 {
		return fmt.Errorf("config: GPD_FETCH_MAX_REDIRECTS must not be negative")
	}
	switch c.Store.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
