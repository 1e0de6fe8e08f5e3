package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the event service.
type Config struct {
	HTTPPort        int
	StorageDSN      string
	FrontendBaseURL string
	LocationTimeout time.Duration
	WarnRangeKm     float64
	FilterRangeKm   float64
	SeedDemoData    bool
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields and accumulates
// every invalid value into a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		StorageDSN:      "memory",
		FrontendBaseURL: "http://localhost:5173",
		LocationTimeout: 15 * time.Second,
		WarnRangeKm:     1.0,
		FilterRangeKm:   0.5,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ESTATE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ESTATE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ESTATE_STORAGE_DSN")); dsn != "" {
		cfg.StorageDSN = dsn
	}

	if base := strings.TrimSpace(os.Getenv("ESTATE_FRONTEND_BASE_URL")); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			invalid = append(invalid, "ESTATE_FRONTEND_BASE_URL")
		} else {
			cfg.FrontendBaseURL = strings.TrimRight(base, "/")
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("ESTATE_LOCATION_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "ESTATE_LOCATION_TIMEOUT")
		} else {
			cfg.LocationTimeout = timeout
		}
	}

	if warnValue := strings.TrimSpace(os.Getenv("ESTATE_CHECKIN_WARN_RANGE_KM")); warnValue != "" {
		warn, err := strconv.ParseFloat(warnValue, 64)
		if err != nil || warn <= 0 {
			invalid = append(invalid, "ESTATE_CHECKIN_WARN_RANGE_KM")
		} else {
			cfg.WarnRangeKm = warn
		}
	}

	if filterValue := strings.TrimSpace(os.Getenv("ESTATE_CHECKIN_FILTER_RANGE_KM")); filterValue != "" {
		filter, err := strconv.ParseFloat(filterValue, 64)
		if err != nil || filter <= 0 {
			invalid = append(invalid, "ESTATE_CHECKIN_FILTER_RANGE_KM")
		} else {
			cfg.FilterRangeKm = filter
		}
	}

	if seedValue := strings.TrimSpace(os.Getenv("ESTATE_SEED_DEMO")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "ESTATE_SEED_DEMO")
		} else {
			cfg.SeedDemoData = seed
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
