package core

import (
	"testing"
	"time"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := ConfigFromLookup(lookupFrom(nil))

	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("base url: got %q", cfg.BaseURL)
	}
	if cfg.Token != DefaultToken {
		t.Fatalf("token: got %q", cfg.Token)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Fatalf("page size: got %d", cfg.PageSize)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("poll interval: got %v", cfg.PollInterval)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	cfg := ConfigFromLookup(lookupFrom(map[string]string{
		EnvBaseURL:      "  https://chat.example.com  ",
		EnvToken:        "abc",
		EnvPageSize:     "25",
		EnvPollInterval: "0",
	}))

	if cfg.BaseURL != "https://chat.example.com" {
		t.Fatalf("base url: got %q", cfg.BaseURL)
	}
	if cfg.Token != "abc" {
		t.Fatalf("token: got %q", cfg.Token)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("page size: got %d", cfg.PageSize)
	}
	if cfg.PollInterval != 0 {
		t.Fatalf("poll interval: got %v", cfg.PollInterval)
	}
}

func TestConfigInvalidNumbersFallBack(t *testing.T) {
	cfg := ConfigFromLookup(lookupFrom(map[string]string{
		EnvPageSize:     "lots",
		EnvPollInterval: "soon",
	}))

	if cfg.PageSize != DefaultPageSize {
		t.Fatalf("page size: got %d", cfg.PageSize)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Fatalf("poll interval: got %v", cfg.PollInterval)
	}

	negative := ConfigFromLookup(lookupFrom(map[string]string{EnvPageSize: "-3", EnvPollInterval: "-1"}))
	if negative.PageSize != DefaultPageSize {
		t.Fatalf("negative page size should fall back, got %d", negative.PageSize)
	}
	if negative.PollInterval >= 0 {
		t.Fatalf("negative poll interval should be kept to disable polling, got %v", negative.PollInterval)
	}
}

func TestConfigOutOfRangeNumbersFallBack(t *testing.T) {
	tests := []struct {
		name     string
		pageSize string
		interval string
	}{
		{name: "huge", pageSize: "1e300", interval: "1e300"},
		{name: "huge negative", pageSize: "-1e300", interval: "-1e300"},
		{name: "duration overflow", pageSize: "9.3e18", interval: "1e16"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ConfigFromLookup(lookupFrom(map[string]string{
				EnvPageSize:     tt.pageSize,
				EnvPollInterval: tt.interval,
			}))
			if cfg.PageSize != DefaultPageSize {
				t.Fatalf("page size: got %d", cfg.PageSize)
			}
			if cfg.PollInterval != DefaultPollInterval {
				t.Fatalf("poll interval: got %v", cfg.PollInterval)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{BaseURL: "http://localhost:3000", PageSize: 5}).Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if err := (Config{BaseURL: "localhost", PageSize: 5}).Validate(); err == nil {
		t.Fatalf("expected error for base url without scheme")
	}
	if err := (Config{BaseURL: "http://localhost", PageSize: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero page size")
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("2025-01-01T00:00:00.000Z")
	if !ok || !ts.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parse: %v %v", ts, ok)
	}
	if _, ok := ParseTimestamp("not a time"); ok {
		t.Fatalf("expected parse failure")
	}
	if got := FormatTimestamp(time.Date(2025, 1, 1, 1, 2, 3, 4_000_000, time.FixedZone("x", 3600))); got != "2025-01-01T00:02:03.004Z" {
		t.Fatalf("format: got %q", got)
	}
}
