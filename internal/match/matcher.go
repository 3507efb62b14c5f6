package match

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/stationhop/backend-go/internal/models"
	"github.com/stationhop/backend-go/internal/normalize"
	"github.com/stationhop/backend-go/internal/registry"
)

// ErrEmptyInput marks a caller error: matching requires non-blank text. It is
// distinct from a no-match, which returns an empty candidate list.
var ErrEmptyInput = errors.New("match: input normalizes to empty string")

// Candidate is one scored registry entry.
type Candidate struct {
	Station models.Station
	Score   float64
	// ExactCanonical / ExactAlias record a normalized string equality hit,
	// which seeds the eventual matching rule.
	ExactCanonical bool
	ExactAlias     bool
	// ViaAlias marks a fuzzy score whose best-scoring name was an alias
	// rather than the canonical name.
	ViaAlias bool
}

// Matcher scores OCR text against the registry name-space. It is a pure
// function of (normalized text, floor) over an immutable registry, so results
// are memoized in an LRU cache.
type Matcher struct {
	registry *registry.Registry
	floor    float64
	cache    *lru.Cache[string, []Candidate]
}

func NewMatcher(reg *registry.Registry, floor float64, lruSize int) (*Matcher, error) {
	if lruSize < 1 {
		lruSize = 1
	}
	cache, err := lru.New[string, []Candidate](lruSize)
	if err != nil {
		return nil, fmt.Errorf("creating resolution LRU cache: %w", err)
	}
	return &Matcher{
		registry: reg,
		floor:    floor,
		cache:    cache,
	}, nil
}

// Match ranks every station that clears the configured floor, best first.
// Ties are broken by shorter display name (prefers the more specific entry
// over longer compound ones), then by station ID for determinism.
func (m *Matcher) Match(rawText string) ([]Candidate, error) {
	return m.MatchWithFloor(rawText, m.floor)
}

// MatchWithFloor is Match with an explicit floor; the resolver uses a relaxed
// floor to collect best-effort suggestions after a clear miss.
func (m *Matcher) MatchWithFloor(rawText string, floor float64) ([]Candidate, error) {
	text := normalize.Normalize(rawText)
	if text == "" {
		return nil, ErrEmptyInput
	}

	key := cacheKey(text, floor)
	if cached, ok := m.cache.Get(key); ok {
		log.Trace().Str("text", text).Msg("Resolution cache HIT")
		return cached, nil
	}

	var candidates []Candidate
	for _, entry := range m.registry.Stations() {
		candidate := scoreStation(text, entry)
		if candidate.Score >= floor {
			candidates = append(candidates, candidate)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		ni, nj := len(candidates[i].Station.CanonicalName), len(candidates[j].Station.CanonicalName)
		if ni != nj {
			return ni < nj
		}
		return candidates[i].Station.ID < candidates[j].Station.ID
	})

	m.cache.Add(key, candidates)
	return candidates, nil
}

func cacheKey(normalizedText string, floor float64) string {
	return fmt.Sprintf("%s|%.4f", normalizedText, floor)
}

// scoreStation computes the station's score as the max similarity over its
// canonical name and aliases. Normalized equality short-circuits at 1.0.
func scoreStation(text string, entry registry.IndexedStation) Candidate {
	candidate := Candidate{Station: entry.Station}

	if text == entry.NormalizedName {
		candidate.Score = 1.0
		candidate.ExactCanonical = true
		return candidate
	}
	for _, alias := range entry.NormalizedAliases {
		if text == alias {
			candidate.Score = 1.0
			candidate.ExactAlias = true
			return candidate
		}
	}

	best := similarity(text, entry.NormalizedName)
	for _, alias := range entry.NormalizedAliases {
		if s := similarity(text, alias); s > best {
			best = s
			candidate.ViaAlias = true
		}
	}
	candidate.Score = best
	return candidate
}

// similarity is edit-distance similarity: 1 - lev(a,b)/max(len(a),len(b)),
// clamped to [0,1].
func similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)
	s := 1.0 - float64(distance)/float64(longest)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Suggestions converts the top candidates into the caller-facing fallback
// shape, best score first.
func Suggestions(candidates []Candidate, limit int) []models.Suggestion {
	if limit > len(candidates) {
		limit = len(candidates)
	}
	suggestions := make([]models.Suggestion, 0, limit)
	for _, c := range candidates[:limit] {
		suggestions = append(suggestions, models.Suggestion{
			StationID:   c.Station.ID,
			DisplayName: c.Station.CanonicalName,
			Score:       c.Score,
		})
	}
	return suggestions
}
