package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolverConfig() ResolverConfig {
	return ResolverConfig{
		ScoreFloor:           0.55,
		RelaxedScoreFloor:    0.35,
		DisambiguationMargin: 0.08,
		MaxSuggestions:       3,
		LRUSize:              128,
	}
}

func TestResolverCacheReusesResolverPerRegistry(t *testing.T) {
	t.Parallel()

	cache := NewResolverCache(testResolverConfig())
	reg := testRegistry(t)

	first, err := cache.For(reg)
	require.NoError(t, err)
	second, err := cache.For(reg)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestResolverCacheRebuildsOnNewRegistry(t *testing.T) {
	t.Parallel()

	cache := NewResolverCache(testResolverConfig())

	first, err := cache.For(testRegistry(t))
	require.NoError(t, err)

	// a reloaded catalog is a new snapshot and gets a fresh resolver
	second, err := cache.For(testRegistry(t))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestResolverCacheResolverWorks(t *testing.T) {
	t.Parallel()

	cache := NewResolverCache(testResolverConfig())
	resolver, err := cache.For(testRegistry(t))
	require.NoError(t, err)

	resolved, err := resolver.Resolve("Victoria", nil)
	require.NoError(t, err)
	assert.Equal(t, "940GZZLUVIC", resolved.StationID)
}
