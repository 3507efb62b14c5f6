package geofence

import (
	"math"

	"github.com/rs/zerolog/log"
	"github.com/stationhop/backend-go/internal/models"
)

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between two points in meters,
// computed with the haversine formula. No rounding happens here; presentation
// rounding is the caller's concern.
func Distance(a, b models.Coordinates) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Validate checks whether a claimed device location is plausibly at the
// station. A nil device location without bypass yields Passed=false with a
// nil distance; the pipeline distinguishes that case from out-of-range.
func Validate(deviceLocation *models.Coordinates, station models.Coordinates, radiusMeters float64, bypass bool) models.GeofenceOutcome {
	outcome := models.GeofenceOutcome{
		RadiusMeters: radiusMeters,
	}

	if deviceLocation != nil {
		distance := Distance(*deviceLocation, station)
		outcome.DistanceMeters = &distance
	}

	if bypass {
		// Simulation mode: the distance, when measurable, is kept for logging
		// but never enforced.
		outcome.Passed = true
		outcome.Bypassed = true
		if outcome.DistanceMeters != nil {
			log.Debug().
				Float64("distance_meters", *outcome.DistanceMeters).
				Msg("Geofence bypassed in simulation mode")
		}
		return outcome
	}

	if deviceLocation == nil {
		return outcome
	}

	outcome.Passed = *outcome.DistanceMeters <= radiusMeters
	return outcome
}
