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
	Remote    RemoteConfig
	Browser   BrowserConfig
	Sync      SyncConfig
	Queue     QueueConfig
	DB        DBConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// RemoteConfig controls how the remote game-information service is reached.
// Token presence selects the authenticated API backend; without a token the
// unauthenticated JSON/scrape fallback is used.
type RemoteConfig struct {
	// Token is the bearer credential for the structured API.
	Token string

	// Username is the collection owner on the remote service.
	Username string

	// MinRequestInterval is the minimum gap between two API requests.
	MinRequestInterval time.Duration // default: 5s

	// Accepted202Delay is the wait before retrying a 202 "data being
	// prepared" response.
	Accepted202Delay time.Duration // default: 3s

	// Accepted202Attempts bounds 202 retries.
	Accepted202Attempts int // default: 5

	// ServerErrorBase is the initial backoff after a 5xx response;
	// later attempts double it.
	ServerErrorBase time.Duration // default: 2s

	// ServerErrorAttempts bounds 5xx retries.
	ServerErrorAttempts int // default: 3

	// ChunkSize is the remote per-request item cap for multi-id requests.
	ChunkSize int // default: 20

	// ItemPause is the inter-item pause during fallback bulk enrichment.
	ItemPause time.Duration // default: 1s

	// HTTPTimeout is the per-request deadline.
	HTTPTimeout time.Duration // default: 30s
}

// BrowserConfig controls the Rod browser used by the fallback backend.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// PageTimeout is the deadline for one page load + extraction.
	PageTimeout time.Duration // default: 45s
}

// SyncConfig controls the full-collection sync scheduler.
type SyncConfig struct {
	// Interval is how long after a successful sync the next one is due.
	Interval time.Duration // default: 24h

	// WarmupDelay is the pause before the post-startup sync check.
	WarmupDelay time.Duration // default: 30s

	// StaleAfter marks catalog entries due for a detail refresh.
	StaleAfter time.Duration // default: 168h (one week)
}

// QueueConfig controls the scrape job queue.
type QueueConfig struct {
	// Retention is how long terminal jobs are kept before cleanup.
	Retention time.Duration // default: 72h

	// CleanupEvery is the cadence of the retention sweep.
	CleanupEvery time.Duration // default: 1h

	// RecentWindow is how many recent jobs Status reports.
	RecentWindow int // default: 20
}

// DBConfig controls the SQLite catalog store.
type DBConfig struct {
	Path string // default: "meeplesync.db"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting on the HTTP API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 10

	// Burst is the maximum burst size per API key.
	Burst int // default: 20
}

// CacheConfig controls the search/hot-list response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500

	// TTL is how long a cached response stays fresh.
	TTL time.Duration // default: 10m
}

// WebhookConfig controls optional event delivery.
type WebhookConfig struct {
	// URL receives sync.completed / batch.completed events. Empty disables.
	URL string

	// Secret signs event payloads with HMAC-SHA256 when non-empty.
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
			Host: envOr("MEEPLE_HOST", "0.0.0.0"),
			Port: envIntOr("MEEPLE_PORT", 8080),
			Mode: envOr("MEEPLE_MODE", "release"),
		},
		Remote: RemoteConfig{
			Token:               os.Getenv("MEEPLE_BGG_TOKEN"),
			Username:            os.Getenv("MEEPLE_BGG_USERNAME"),
			MinRequestInterval:  envDurationOr("MEEPLE_MIN_REQUEST_INTERVAL", 5*time.Second),
			Accepted202Delay:    envDurationOr("MEEPLE_202_DELAY", 3*time.Second),
			Accepted202Attempts: envIntOr("MEEPLE_202_ATTEMPTS", 5),
			ServerErrorBase:     envDurationOr("MEEPLE_5XX_BASE_DELAY", 2*time.Second),
			ServerErrorAttempts: envIntOr("MEEPLE_5XX_ATTEMPTS", 3),
			ChunkSize:           envIntOr("MEEPLE_CHUNK_SIZE", 20),
			ItemPause:           envDurationOr("MEEPLE_ITEM_PAUSE", time.Second),
			HTTPTimeout:         envDurationOr("MEEPLE_HTTP_TIMEOUT", 30*time.Second),
		},
		Browser: BrowserConfig{
			Headless:    envBoolOr("MEEPLE_HEADLESS", true),
			NoSandbox:   envBoolOr("MEEPLE_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("MEEPLE_BROWSER_BIN"),
			PageTimeout: envDurationOr("MEEPLE_PAGE_TIMEOUT", 45*time.Second),
		},
		Sync: SyncConfig{
			Interval:    envDurationOr("MEEPLE_SYNC_INTERVAL", 24*time.Hour),
			WarmupDelay: envDurationOr("MEEPLE_SYNC_WARMUP", 30*time.Second),
			StaleAfter:  envDurationOr("MEEPLE_STALE_AFTER", 168*time.Hour),
		},
		Queue: QueueConfig{
			Retention:    envDurationOr("MEEPLE_JOB_RETENTION", 72*time.Hour),
			CleanupEvery: envDurationOr("MEEPLE_JOB_CLEANUP_EVERY", time.Hour),
			RecentWindow: envIntOr("MEEPLE_RECENT_JOBS", 20),
		},
		DB: DBConfig{
			Path: envOr("MEEPLE_DB_PATH", "meeplesync.db"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("MEEPLE_AUTH_ENABLED", false),
			APIKeys: envSliceOr("MEEPLE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MEEPLE_RATE_RPS", 10.0),
			Burst:             envIntOr("MEEPLE_RATE_BURST", 20),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("MEEPLE_CACHE_MAX_ENTRIES", 500),
			TTL:        envDurationOr("MEEPLE_CACHE_TTL", 10*time.Minute),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("MEEPLE_WEBHOOK_URL"),
			Secret: os.Getenv("MEEPLE_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("MEEPLE_LOG_LEVEL", "info"),
			Format: envOr("MEEPLE_LOG_FORMAT", "json"),
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
