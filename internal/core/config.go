package core

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL      = "http://localhost:3000"
	DefaultToken        = "super-secret-doodle-token"
	DefaultPageSize     = 5
	DefaultPollInterval = 5000 * time.Millisecond
)

// Environment variable names read by LoadConfig.
const (
	EnvBaseURL      = "CHAT_API_BASE_URL"
	EnvToken        = "CHAT_API_TOKEN"
	EnvPageSize     = "CHAT_PAGE_LIMIT"
	EnvPollInterval = "CHAT_POLL_INTERVAL"
)

// Config is resolved once at startup and not mutated afterwards.
type Config struct {
	BaseURL  string
	Token    string
	PageSize int
	// PollInterval <= 0 disables periodic refresh.
	PollInterval time.Duration
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first; it never overrides variables that are
// already set.
func LoadConfig() Config {
	_ = godotenv.Load()
	return ConfigFromLookup(os.LookupEnv)
}

// ConfigFromLookup builds a Config from an environment lookup function.
func ConfigFromLookup(lookup func(string) (string, bool)) Config {
	get := func(key string) string {
		value, _ := lookup(key)
		return strings.TrimSpace(value)
	}

	cfg := Config{
		BaseURL:      get(EnvBaseURL),
		Token:        get(EnvToken),
		PageSize:     toInt(get(EnvPageSize), DefaultPageSize),
		PollInterval: toMillis(get(EnvPollInterval), DefaultPollInterval),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Token == "" {
		cfg.Token = DefaultToken
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return cfg
}

// Validate checks that the base URL is absolute and the page size positive.
func (c Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("base url must include scheme and host: %q", c.BaseURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	return nil
}

func toInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fallback
	}
	if parsed >= float64(math.MaxInt) || parsed < float64(math.MinInt) {
		return fallback
	}
	return int(parsed)
}

// toMillis reads a millisecond count, falling back when it would overflow
// a time.Duration.
func toMillis(value string, fallback time.Duration) time.Duration {
	ms := int64(toInt(value, int(fallback/time.Millisecond)))
	limit := int64(math.MaxInt64 / time.Millisecond)
	if ms > limit || ms < -limit {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
