package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"rcip-agent/internal/infrastructure/config"
)

// Store caches upstream text-generation responses keyed by prompt.
type Store interface {
	// Get returns the cached response for the prompt, if any.
	Get(ctx context.Context, prompt string) (string, bool)

	// Set stores the response for the prompt.
	Set(ctx context.Context, prompt, value string) error

	// Close releases backend resources.
	Close() error
}

// New creates the cache backend selected by configuration. It returns nil
// when caching is disabled; callers must treat a nil Store as a pass-through.
func New(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case "redis":
		return newRedisStore(&cfg.Cache)
	case "memory":
		return newMemoryStore(&cfg.Cache), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// promptKey derives a stable cache key from a prompt.
func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "ai:response:" + hex.EncodeToString(sum[:])
}
