package match

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/stationhop/backend-go/internal/geofence"
	"github.com/stationhop/backend-go/internal/models"
)

// ResolutionReason classifies a failed resolution.
type ResolutionReason string

const (
	ReasonNotFound  ResolutionReason = "not_found"
	ReasonAmbiguous ResolutionReason = "ambiguous"
)

// ResolutionError is the discriminated failure result of a resolution
// attempt. It always carries enough suggestions for the caller to offer a
// "did you mean" recovery path.
type ResolutionError struct {
	Reason      ResolutionReason
	Suggestions []models.Suggestion
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("station resolution failed: %s (%d suggestions)", e.Reason, len(e.Suggestions))
}

// Resolver turns ranked candidates into exactly one station, or an explicit
// ambiguous/not-found result. It never guesses: near-ties are only broken by
// the margin rule or by GPS proximity.
type Resolver struct {
	matcher        *Matcher
	margin         float64
	relaxedFloor   float64
	maxSuggestions int
}

func NewResolver(matcher *Matcher, margin, relaxedFloor float64, maxSuggestions int) *Resolver {
	return &Resolver{
		matcher:        matcher,
		margin:         margin,
		relaxedFloor:   relaxedFloor,
		maxSuggestions: maxSuggestions,
	}
}

// Resolve maps OCR text, with an optional device fix, to a single station.
// The device location is used here for identity disambiguation only, never
// as location verification; that stays the geofence validator's job.
func (r *Resolver) Resolve(rawText string, deviceLocation *models.Coordinates) (*models.ResolvedStation, error) {
	candidates, err := r.matcher.Match(rawText)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return nil, r.notFound(rawText)
	}

	top := candidates[0]
	if len(candidates) == 1 || top.Score-candidates[1].Score >= r.margin {
		return resolved(top, ruleFor(top)), nil
	}

	// Near-tie: every candidate within the margin of the best is in play.
	// tied gets its own backing so appends never write into the slice the
	// matcher keeps in its result cache.
	tied := append(make([]Candidate, 0, len(candidates)), top)
	for _, c := range candidates[1:] {
		if top.Score-c.Score < r.margin {
			tied = append(tied, c)
		}
	}

	if deviceLocation != nil {
		nearest := pickNearest(tied, *deviceLocation)
		log.Debug().
			Str("station_id", nearest.Station.ID).
			Int("tied_candidates", len(tied)).
			Msg("Near-tie broken by GPS proximity")
		return resolved(nearest, models.MatchRuleGPSDisambiguated), nil
	}

	return nil, &ResolutionError{
		Reason:      ReasonAmbiguous,
		Suggestions: Suggestions(tied, r.maxSuggestions),
	}
}

// notFound builds the miss result, running a relaxed-floor pass so the caller
// can still offer best-effort suggestions.
func (r *Resolver) notFound(rawText string) *ResolutionError {
	relaxed, err := r.matcher.MatchWithFloor(rawText, r.relaxedFloor)
	if err != nil {
		relaxed = nil
	}
	return &ResolutionError{
		Reason:      ReasonNotFound,
		Suggestions: Suggestions(relaxed, r.maxSuggestions),
	}
}

func pickNearest(tied []Candidate, loc models.Coordinates) Candidate {
	nearest := tied[0]
	nearestDistance := geofence.Distance(loc, nearest.Station.Coordinates())
	for _, c := range tied[1:] {
		if d := geofence.Distance(loc, c.Station.Coordinates()); d < nearestDistance {
			nearest = c
			nearestDistance = d
		}
	}
	return nearest
}

func ruleFor(c Candidate) models.MatchRule {
	switch {
	case c.ExactCanonical:
		return models.MatchRuleExact
	case c.ExactAlias, c.ViaAlias:
		return models.MatchRuleAlias
	default:
		return models.MatchRuleFuzzy
	}
}

func resolved(c Candidate, rule models.MatchRule) *models.ResolvedStation {
	return &models.ResolvedStation{
		StationID:   c.Station.ID,
		DisplayName: c.Station.CanonicalName,
		Latitude:    c.Station.Latitude,
		Longitude:   c.Station.Longitude,
		Rule:        rule,
		Score:       c.Score,
	}
}
