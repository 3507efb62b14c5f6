package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPipelineConfigDefaults(t *testing.T) {
	cfg := GetPipelineConfig()

	assert.Equal(t, float64(500), cfg.GeofenceRadiusMeters)
	assert.False(t, cfg.SimulationMode)
	assert.Equal(t, 0.55, cfg.MatchScoreFloor)
	assert.Equal(t, 0.35, cfg.RelaxedScoreFloor)
	assert.Equal(t, 0.08, cfg.DisambiguationMargin)
	assert.Equal(t, 3, cfg.MaxSuggestions)

	require.NoError(t, cfg.Validate())
}

func TestGetPipelineConfigFromEnv(t *testing.T) {
	t.Setenv("GEOFENCE_RADIUS_METERS", "250")
	t.Setenv("SIMULATION_MODE", "true")
	t.Setenv("MATCH_SCORE_FLOOR", "0.6")
	t.Setenv("MAX_SUGGESTIONS", "5")

	cfg := GetPipelineConfig()

	assert.Equal(t, float64(250), cfg.GeofenceRadiusMeters)
	assert.True(t, cfg.SimulationMode)
	assert.Equal(t, 0.6, cfg.MatchScoreFloor)
	assert.Equal(t, 5, cfg.MaxSuggestions)
}

func TestGetPipelineConfigInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("GEOFENCE_RADIUS_METERS", "not-a-number")
	t.Setenv("MAX_SUGGESTIONS", "many")

	cfg := GetPipelineConfig()

	assert.Equal(t, float64(500), cfg.GeofenceRadiusMeters)
	assert.Equal(t, 3, cfg.MaxSuggestions)
}

func TestPipelineConfigValidate(t *testing.T) {
	t.Parallel()

	base := func() *PipelineConfig {
		return &PipelineConfig{
			GeofenceRadiusMeters: 500,
			MatchScoreFloor:      0.55,
			RelaxedScoreFloor:    0.35,
			DisambiguationMargin: 0.08,
			MaxSuggestions:       3,
			ResolutionLRUSize:    1000,
		}
	}

	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"radius below one meter", func(c *PipelineConfig) { c.GeofenceRadiusMeters = 0 }},
		{"floor above one", func(c *PipelineConfig) { c.MatchScoreFloor = 1.5 }},
		{"floor zero", func(c *PipelineConfig) { c.MatchScoreFloor = 0 }},
		{"relaxed floor above floor", func(c *PipelineConfig) { c.RelaxedScoreFloor = 0.7 }},
		{"negative margin", func(c *PipelineConfig) { c.DisambiguationMargin = -0.1 }},
		{"margin of one", func(c *PipelineConfig) { c.DisambiguationMargin = 1 }},
		{"zero suggestions", func(c *PipelineConfig) { c.MaxSuggestions = 0 }},
		{"zero cache size", func(c *PipelineConfig) { c.ResolutionLRUSize = 0 }},
	}

	require.NoError(t, base().Validate())

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
