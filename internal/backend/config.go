package backend

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds lesson backend configuration.
type Config struct {
	// BaseURL is the API root; endpoint paths are joined to it.
	// Default: "http://localhost:8000/api".
	BaseURL string

	// Token is an optional bearer token sent with every request.
	Token string

	// Timeout bounds a single request. Default: 15s.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000/api",
		Timeout: 15 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("LINGO_API_URL"); u != "" {
		cfg.BaseURL = u
	}
	if t := os.Getenv("LINGO_API_TOKEN"); t != "" {
		cfg.Token = t
	}
	if d := os.Getenv("LINGO_API_TIMEOUT"); d != "" {
		if v, err := time.ParseDuration(d); err == nil {
			cfg.Timeout = v
		} else {
			fmt.Fprintf(os.Stderr, "warning: ignoring invalid LINGO_API_TIMEOUT %q: %v\n", d, err)
		}
	}

	return cfg
}

// Validate checks that the base URL is absolute and the timeout positive.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid LINGO_API_URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("LINGO_API_URL must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LINGO_API_TIMEOUT must be positive, got %s", c.Timeout)
	}
	return nil
}
