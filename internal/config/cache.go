package config

import "time"

// CacheConfig defines settings for the response cache middleware and the
// latest-seating record cache.  When Enabled is false or no Redis client
// is configured, the response cache is disabled.  Methods lists the HTTP
// methods whose responses are cached; successful requests with any other
// method purge the cache namespace.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
	LatestTTL    time.Duration // lifetime of the cached current seating per grid
}

// LoadCacheConfig builds a CacheConfig from CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      envList("CACHE_METHODS", "GET"),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		LatestTTL:    envDur("CACHE_LATEST_TTL", 10*time.Minute),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.LatestTTL <= 0 {
		cfg.LatestTTL = 10 * time.Minute
	}
	return cfg
}
