package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultReaderURL is the public endpoint of the reader extraction service,
// used when no server URL is configured.
const DefaultReaderURL = "https://r.jina.ai/"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Reader    ReaderConfig
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

// ReaderConfig controls the outbound reader extraction client.
type ReaderConfig struct {
	// APIKey authenticates against the reader service. Optional: when empty
	// the request is sent without an Authorization header, which the public
	// endpoint accepts at a lower rate limit.
	APIKey string

	// ServerURL is the reader service endpoint. default: DefaultReaderURL.
	ServerURL string

	// Timeout is the per-attempt deadline for one reader round-trip.
	// default: 30s
	Timeout time.Duration

	// MaxRPS caps outbound requests per second across all scrapes sharing
	// this client. 0 disables client-side limiting.
	MaxRPS float64

	// Proxy is an optional proxy URL for outbound requests.
	Proxy string
}

// AuthConfig controls API key authentication for the HTTP surface.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting on the HTTP surface.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
//
// Components never read the environment themselves: construction takes the
// explicit structs below, and Load is the single place process-wide state
// enters the program.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("DISTILL_HOST", "0.0.0.0"),
			Port: envIntOr("DISTILL_PORT", 8080),
			Mode: envOr("DISTILL_MODE", "release"),
		},
		Reader: ReaderConfig{
			APIKey:    os.Getenv("DISTILL_READER_API_KEY"),
			ServerURL: envOr("DISTILL_READER_URL", DefaultReaderURL),
			Timeout:   envDurationOr("DISTILL_READER_TIMEOUT", 30*time.Second),
			MaxRPS:    envFloatOr("DISTILL_READER_MAX_RPS", 0),
			Proxy:     os.Getenv("DISTILL_PROXY"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("DISTILL_AUTH_ENABLED", false),
			APIKeys: envSliceOr("DISTILL_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("DISTILL_RATE_RPS", 5.0),
			Burst:             envIntOr("DISTILL_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("DISTILL_LOG_LEVEL", "info"),
			Format: envOr("DISTILL_LOG_FORMAT", "json"),
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
