package match

import (
	"sync"

	"github.com/stationhop/backend-go/internal/registry"
)

// ResolverConfig carries the tuning knobs a ResolverCache needs to build a
// resolver for a registry snapshot.
type ResolverConfig struct {
	ScoreFloor           float64
	RelaxedScoreFloor    float64
	DisambiguationMargin float64
	MaxSuggestions       int
	LRUSize              int
}

// ResolverCache memoizes one resolver per registry snapshot. Registries are
// immutable, so as long as the same *Registry comes back from the catalog
// cache, the same matcher (and its LRU of scored candidates) is reused across
// warm invocations instead of being rebuilt per request.
type ResolverCache struct {
	cfg      ResolverConfig
	mu       sync.Mutex
	registry *registry.Registry
	resolver *Resolver
}

func NewResolverCache(cfg ResolverConfig) *ResolverCache {
	return &ResolverCache{cfg: cfg}
}

// For returns the resolver for reg, building one only when the registry
// snapshot has changed since the last call.
func (c *ResolverCache) For(reg *registry.Registry) (*Resolver, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolver != nil && c.registry == reg {
		return c.resolver, nil
	}

	matcher, err := NewMatcher(reg, c.cfg.ScoreFloor, c.cfg.LRUSize)
	if err != nil {
		return nil, err
	}
	c.registry = reg
	c.resolver = NewResolver(matcher, c.cfg.DisambiguationMargin, c.cfg.RelaxedScoreFloor, c.cfg.MaxSuggestions)
	return c.resolver, nil
}
