package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// PipelineConfig holds the check-in verification tunables.
type PipelineConfig struct {
	// Geofence settings
	GeofenceRadiusMeters float64
	SimulationMode       bool

	// Matcher settings. The floors and margin are tuned values, not derived
	// ones; they are configuration so they can be re-tuned against a real
	// station-name corpus.
	MatchScoreFloor      float64
	RelaxedScoreFloor    float64
	DisambiguationMargin float64
	MaxSuggestions       int

	// Resolution LRU cache settings
	ResolutionLRUSize int
}

const (
	// Default values
	defaultGeofenceRadiusMeters = 500
	defaultMatchScoreFloor      = 0.55
	defaultRelaxedScoreFloor    = 0.35
	defaultDisambiguationMargin = 0.08
	defaultMaxSuggestions       = 3
	defaultResolutionLRUSize    = 1000
)

// GetPipelineConfig returns the pipeline configuration from environment
// variables or defaults.
func GetPipelineConfig() *PipelineConfig {
	config := &PipelineConfig{
		GeofenceRadiusMeters: getEnvFloat("GEOFENCE_RADIUS_METERS", defaultGeofenceRadiusMeters),
		SimulationMode:       getEnvBool("SIMULATION_MODE", false),
		MatchScoreFloor:      getEnvFloat("MATCH_SCORE_FLOOR", defaultMatchScoreFloor),
		RelaxedScoreFloor:    getEnvFloat("RELAXED_SCORE_FLOOR", defaultRelaxedScoreFloor),
		DisambiguationMargin: getEnvFloat("DISAMBIGUATION_MARGIN", defaultDisambiguationMargin),
		MaxSuggestions:       getEnvInt("MAX_SUGGESTIONS", defaultMaxSuggestions),
		ResolutionLRUSize:    getEnvInt("RESOLUTION_LRU_SIZE", defaultResolutionLRUSize),
	}

	log.Debug().
		Float64("GeofenceRadiusMeters", config.GeofenceRadiusMeters).
		Bool("SimulationMode", config.SimulationMode).
		Float64("MatchScoreFloor", config.MatchScoreFloor).
		Float64("RelaxedScoreFloor", config.RelaxedScoreFloor).
		Float64("DisambiguationMargin", config.DisambiguationMargin).
		Int("MaxSuggestions", config.MaxSuggestions).
		Int("ResolutionLRUSize", config.ResolutionLRUSize).
		Msg("Pipeline configuration loaded")

	return config
}

// Validate rejects configurations the pipeline cannot run with.
func (c *PipelineConfig) Validate() error {
	if c.GeofenceRadiusMeters < 1 {
		return fmt.Errorf("geofence radius must be at least 1 meter, got %f", c.GeofenceRadiusMeters)
	}
	if c.MatchScoreFloor <= 0 || c.MatchScoreFloor > 1 {
		return fmt.Errorf("match score floor must be in (0, 1], got %f", c.MatchScoreFloor)
	}
	if c.RelaxedScoreFloor <= 0 || c.RelaxedScoreFloor > c.MatchScoreFloor {
		return fmt.Errorf("relaxed floor must be in (0, %f], got %f", c.MatchScoreFloor, c.RelaxedScoreFloor)
	}
	if c.DisambiguationMargin < 0 || c.DisambiguationMargin >= 1 {
		return fmt.Errorf("disambiguation margin must be in [0, 1), got %f", c.DisambiguationMargin)
	}
	if c.MaxSuggestions < 1 {
		return fmt.Errorf("max suggestions must be at least 1, got %d", c.MaxSuggestions)
	}
	if c.ResolutionLRUSize < 1 {
		return fmt.Errorf("resolution LRU size must be at least 1, got %d", c.ResolutionLRUSize)
	}
	return nil
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
		log.Warn().Str("key", key).Msg("Invalid float value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
