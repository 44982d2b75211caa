// Package config provides a minimal config loader for the souk client and
// the development stub server.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client configuration.
type Config struct {
	// APIBaseURL is the root of the Listing Directory Service,
	// e.g. "http://localhost:8080/api/v1".
	APIBaseURL string

	// RequestTimeout bounds every outbound API call.
	RequestTimeout time.Duration

	// ListingType fixes the browse screen's listing filter for the
	// lifetime of the screen: "Any", "Offer" or "Request".
	ListingType string
}

// Load reads config from the environment with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	base := os.Getenv("SOUK_API_URL")
	if base == "" {
		base = "http://localhost:8080/api/v1"
	}

	timeout := 10 * time.Second
	if raw := os.Getenv("SOUK_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	typ := os.Getenv("SOUK_LISTING_TYPE")
	switch typ {
	case "Any", "Offer", "Request":
	default:
		typ = "Any"
	}

	return &Config{
		APIBaseURL:     base,
		RequestTimeout: timeout,
		ListingType:    typ,
	}
}
