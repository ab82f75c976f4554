package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/use-agent/pagegrab/models"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Crawl     CrawlConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // gin mode: "debug", "release", "test"; default: "release"

	// Env is the deployment environment. "development" exposes error
	// details in responses; "test" keeps the server from listening.
	Env string // default: "production"

	// MaxConcurrent caps simultaneous crawls (each one is a browser process).
	MaxConcurrent int // default: 4

	// QueueWait is how long a request may wait for a free crawl slot
	// before it is rejected with 503.
	QueueWait time.Duration // default: 10s
}

// BrowserConfig controls how each crawl's browser process is launched.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// IgnoreCertErrors lets pages with self-signed certificates load.
	IgnoreCertErrors bool // default: true

	// Proxy is the proxy server for all browser traffic.
	Proxy string

	// Bin is the Chromium binary path. Empty lets rod fetch its own build.
	Bin string
}

// CrawlConfig controls the per-crawl pipeline.
type CrawlConfig struct {
	// NavigationTimeout bounds page navigation, including the wait strategy.
	NavigationTimeout time.Duration // default: 30s

	// OperationTimeout is the default deadline for every other page operation.
	OperationTimeout time.Duration // default: 30s

	// SelectorTimeout bounds the extraction strategies' selector wait.
	SelectorTimeout time.Duration // default: 5s

	// UserAgent is sent when the request carries none.
	UserAgent string

	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080

	ScrollDistance int           // default: 100
	ScrollInterval time.Duration // default: 100ms
	ScrollMaxSteps int           // default: 100
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
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
			Host:          envOr("PAGEGRAB_HOST", "0.0.0.0"),
			Port:          envIntOr("PORT", 3000),
			Mode:          envOr("PAGEGRAB_MODE", "release"),
			Env:           envOr("PAGEGRAB_ENV", "production"),
			MaxConcurrent: envIntOr("PAGEGRAB_MAX_CONCURRENT", 4),
			QueueWait:     envDurationOr("PAGEGRAB_QUEUE_WAIT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:         envBoolOr("PAGEGRAB_HEADLESS", true),
			NoSandbox:        envBoolOr("PAGEGRAB_NO_SANDBOX", true),
			IgnoreCertErrors: envBoolOr("PAGEGRAB_IGNORE_CERT_ERRORS", true),
			Proxy:            os.Getenv("PAGEGRAB_PROXY"),
			Bin:              BrowserBin(os.Getenv("PAGEGRAB_BROWSER_BIN")),
		},
		Crawl: CrawlConfig{
			NavigationTimeout: envDurationOr("PAGEGRAB_NAV_TIMEOUT", 30*time.Second),
			OperationTimeout:  envDurationOr("PAGEGRAB_OP_TIMEOUT", 30*time.Second),
			SelectorTimeout:   envDurationOr("PAGEGRAB_SELECTOR_TIMEOUT", 5*time.Second),
			UserAgent:         envOr("PAGEGRAB_USER_AGENT", models.DefaultUserAgent),
			ViewportWidth:     envIntOr("PAGEGRAB_VIEWPORT_WIDTH", 1920),
			ViewportHeight:    envIntOr("PAGEGRAB_VIEWPORT_HEIGHT", 1080),
			ScrollDistance:    envIntOr("PAGEGRAB_SCROLL_DISTANCE", 100),
			ScrollInterval:    envDurationOr("PAGEGRAB_SCROLL_INTERVAL", 100*time.Millisecond),
			ScrollMaxSteps:    envIntOr("PAGEGRAB_SCROLL_MAX_STEPS", 100),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PAGEGRAB_AUTH_ENABLED", false),
			APIKeys: envSliceOr("PAGEGRAB_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PAGEGRAB_RATE_RPS", 5.0),
			Burst:             envIntOr("PAGEGRAB_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("PAGEGRAB_LOG_LEVEL", "info"),
			Format: envOr("PAGEGRAB_LOG_FORMAT", "json"),
		},
	}
}

// browserPaths are the conventional Chrome/Chromium locations per OS.
var browserPaths = map[string]string{
	"linux":   "/usr/bin/chromium",
	"darwin":  "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"windows": `C:\Program Files\Google\Chrome\Application\chrome.exe`,
}

// BrowserBin resolves the browser executable: the explicit override, then
// the per-OS conventional path if it exists, then whatever rod finds on the
// system. An empty result makes rod download its pinned Chromium.
func BrowserBin(override string) string {
	if override != "" {
		return override
	}
	if p, ok := browserPaths[runtime.GOOS]; ok {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p, found := launcher.LookPath(); found {
		return p
	}
	return ""
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
