package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a configuration whose default limit is requestsPerSecond
// with the given burst, plus the built-in endpoint tiers.
func NewConfig(enabled bool, requestsPerSecond float64, burst int, cleanup time.Duration) *Config {
	if !enabled {
		return &Config{Enabled: false}
	}
	// Express the per-second rate as requests per minute so fractional rates survive
	perMinute := max(int(requestsPerSecond*60), 1)
	return &Config{
		Enabled:         true,
		DefaultLimit:    perMinute,
		DefaultWindow:   time.Minute,
		DefaultBurst:    burst,
		CleanupInterval: cleanup,
		IdleTTL:         time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model-backed operations
		{Path: "/tailor", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/match", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Parsing may call a model too
		{Path: "/parse/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Scoring and reads use the default limit; health is unlimited
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a set.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
