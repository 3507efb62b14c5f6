package models

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Station is an immutable registry entry for a canonical station.
// CanonicalName plus Aliases together form the matchable name-space for the
// station; distinct stations may legitimately share a normalized name.
type Station struct {
	ID            string   `json:"id"`
	CanonicalName string   `json:"canonicalName"`
	Aliases       []string `json:"aliases,omitempty"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Zone          string   `json:"zone,omitempty"`
	Lines         []string `json:"lines,omitempty"`
}

func (s Station) Coordinates() Coordinates {
	return Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}

// MatchRule records how an OCR string was resolved to a station.
type MatchRule string

const (
	MatchRuleExact            MatchRule = "exact"
	MatchRuleAlias            MatchRule = "alias"
	MatchRuleFuzzy            MatchRule = "fuzzy"
	MatchRuleGPSDisambiguated MatchRule = "gps-disambiguated"
)

// ResolvedStation is the outcome of a successful name resolution.
type ResolvedStation struct {
	StationID   string    `json:"stationId"`
	DisplayName string    `json:"displayName"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Rule        MatchRule `json:"matchingRule"`
	Score       float64   `json:"matchScore"`
}

func (r ResolvedStation) Coordinates() Coordinates {
	return Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Suggestion is a fallback candidate offered to the caller when resolution
// fails or ties.
type Suggestion struct {
	StationID   string  `json:"stationId"`
	DisplayName string  `json:"displayName"`
	Score       float64 `json:"score"`
}
