package config

import "time"

// CacheConfig drives the Redis listing cache that sits in front of the
// public browse routes. Only GET responses are cached; entries live for
// TTL unless a dinner or booking mutation invalidates them first.
// MaxBodyBytes caps the response size worth storing, oversized bodies
// are served but not cached.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from LISTING_CACHE_* environment
// variables, falling back to defaults suited to the dinner catalogue
// (short TTL since availability changes with every booking).
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("LISTING_CACHE_ENABLED", true),
		TTL:          envDur("LISTING_CACHE_TTL", 30*time.Second),
		Prefix:       envStr("LISTING_CACHE_PREFIX", "listings"),
		MaxBodyBytes: envInt("LISTING_CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "listings"
	}
	return cfg
}
