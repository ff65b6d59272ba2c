// Package authserver parses configuration for the auth server command.
package authserver

import (
	"context"
	"flag"
	"strconv"
	"strings"

	server "github.com/bbc/radiotag-authserver/internal/services/auth/app"
)

// Config holds auth server command configuration.
type Config struct {
	HTTPAddr   string
	HealthPort int
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config, falling back to environment
// variables and then built-in defaults.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		HTTPAddr:   envOrDefault(lookup, "RADIOTAG_HTTP_ADDR", ":8161"),
		HealthPort: envIntOrDefault(lookup, "RADIOTAG_HEALTH_PORT", 8162),
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The auth HTTP server address")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The gRPC health server port (0 disables)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the auth server.
func Run(ctx context.Context, cfg Config) error {
	return server.Run(ctx, cfg.HTTPAddr, cfg.HealthPort)
}

func envOrDefault(lookup EnvLookup, key, fallback string) string {
	if lookup == nil {
		return fallback
	}
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func envIntOrDefault(lookup EnvLookup, key string, fallback int) int {
	raw := envOrDefault(lookup, key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
