package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Sitemap   SitemapConfig
	Page      PageConfig
	Browser   BrowserConfig
	Engine    EngineConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// SitemapConfig controls how the SKU index is built and cached.
type SitemapConfig struct {
	// URL is the sitemap document the index is built from.
	URL string // default: "https://www.frigidaire.com/sitemap.xml"

	// ProductMarker is the path fragment that identifies product pages.
	ProductMarker string // default: "/en/p/"

	// Timeout bounds the sitemap fetch.
	Timeout time.Duration // default: 10s

	// TTL is how long a built index is served before it is rebuilt.
	TTL time.Duration // default: 1h

	// MaxBodyBytes caps the sitemap body that is read.
	MaxBodyBytes int64 // default: 50 MiB

	// FollowIndex enables one level of <sitemapindex> expansion.
	FollowIndex bool // default: true
}

// PageConfig controls product page fetching.
type PageConfig struct {
	// UserAgent is sent with every product page request.
	UserAgent string // default: "Mozilla/5.0"

	// Timeout bounds a single product page fetch.
	Timeout time.Duration // default: 30s

	// TLSFingerprint makes https fetches present a Chrome ClientHello.
	TLSFingerprint bool // default: true
}

// BrowserConfig controls the optional Rod browser engine.
type BrowserConfig struct {
	// Enabled launches Chromium at start-up and adds it as a fallback engine.
	Enabled bool // default: false

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity.
	MaxPages int // default: 2

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth injects the stealth evasions before navigation.
	Stealth bool // default: true
}

// EngineConfig controls engine escalation.
type EngineConfig struct {
	// MemoryTTL is how long the winning engine for a domain is remembered.
	MemoryTTL time.Duration // default: 24h
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication on /api/v1.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per identity.
	Burst int // default: 5
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
			Host: envOr("SKULOOKUP_HOST", "0.0.0.0"),
			Port: envIntOr("SKULOOKUP_PORT", 8080),
			Mode: envOr("SKULOOKUP_MODE", "release"),
		},
		Sitemap: SitemapConfig{
			URL:           envOr("SKULOOKUP_SITEMAP_URL", "https://www.frigidaire.com/sitemap.xml"),
			ProductMarker: envOr("SKULOOKUP_PRODUCT_MARKER", "/en/p/"),
			Timeout:       envDurationOr("SKULOOKUP_SITEMAP_TIMEOUT", 10*time.Second),
			TTL:           envDurationOr("SKULOOKUP_INDEX_TTL", time.Hour),
			MaxBodyBytes:  int64(envIntOr("SKULOOKUP_SITEMAP_MAX_BYTES", 50<<20)),
			FollowIndex:   envBoolOr("SKULOOKUP_SITEMAP_FOLLOW_INDEX", true),
		},
		Page: PageConfig{
			UserAgent:      envOr("SKULOOKUP_USER_AGENT", "Mozilla/5.0"),
			Timeout:        envDurationOr("SKULOOKUP_PAGE_TIMEOUT", 30*time.Second),
			TLSFingerprint: envBoolOr("SKULOOKUP_TLS_FINGERPRINT", true),
		},
		Browser: BrowserConfig{
			Enabled:    envBoolOr("SKULOOKUP_BROWSER_ENABLED", false),
			Headless:   envBoolOr("SKULOOKUP_HEADLESS", true),
			MaxPages:   envIntOr("SKULOOKUP_MAX_PAGES", 2),
			NoSandbox:  envBoolOr("SKULOOKUP_NO_SANDBOX", false),
			BrowserBin: os.Getenv("SKULOOKUP_BROWSER_BIN"),
			Stealth:    envBoolOr("SKULOOKUP_STEALTH", true),
		},
		Engine: EngineConfig{
			MemoryTTL: envDurationOr("SKULOOKUP_ENGINE_MEMORY_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SKULOOKUP_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SKULOOKUP_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SKULOOKUP_RATE_RPS", 2.0),
			Burst:             envIntOr("SKULOOKUP_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("SKULOOKUP_LOG_LEVEL", "info"),
			Format: envOr("SKULOOKUP_LOG_FORMAT", "json"),
		},
	}
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
