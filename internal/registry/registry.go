package registry

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stationhop/backend-go/internal/models"
	"github.com/stationhop/backend-go/internal/normalize"
)

// IndexedStation pairs a station with its pre-normalized name-space so the
// matcher never re-normalizes registry entries per lookup.
type IndexedStation struct {
	Station        models.Station
	NormalizedName string
	// NormalizedAliases holds the station's aliases after normalization,
	// deduplicated against the canonical name and each other.
	NormalizedAliases []string
}

// Registry is the immutable in-memory station catalog. Safe to share by
// reference across concurrent resolutions; nothing mutates it after New.
type Registry struct {
	stations []IndexedStation
	byID     map[string]*IndexedStation
}

// New builds a registry from raw station entries, normalizing the matchable
// name-space once up front. A duplicate station ID is a load error; duplicate
// normalized names across stations are expected and legal.
func New(stations []models.Station) (*Registry, error) {
	r := &Registry{
		stations: make([]IndexedStation, 0, len(stations)),
		byID:     make(map[string]*IndexedStation, len(stations)),
	}

	ids := make(map[string]bool, len(stations))
	for _, s := range stations {
		if s.ID == "" {
			return nil, fmt.Errorf("station %q has no id", s.CanonicalName)
		}
		if ids[s.ID] {
			return nil, fmt.Errorf("duplicate station id: %s", s.ID)
		}
		ids[s.ID] = true
		name := normalize.Normalize(s.CanonicalName)
		if name == "" {
			return nil, fmt.Errorf("station %s: canonical name normalizes to empty", s.ID)
		}

		seen := map[string]bool{name: true}
		aliases := make([]string, 0, len(s.Aliases))
		for _, alias := range s.Aliases {
			na := normalize.Normalize(alias)
			if na == "" || seen[na] {
				continue
			}
			seen[na] = true
			aliases = append(aliases, na)
		}

		r.stations = append(r.stations, IndexedStation{
			Station:           s,
			NormalizedName:    name,
			NormalizedAliases: aliases,
		})
	}

	for i := range r.stations {
		r.byID[r.stations[i].Station.ID] = &r.stations[i]
	}

	log.Debug().Int("station_count", len(r.stations)).Msg("Station registry indexed")
	return r, nil
}

// Stations returns the indexed entries. Callers must treat the slice as
// read-only.
func (r *Registry) Stations() []IndexedStation {
	return r.stations
}

// FindByID looks up a station by its canonical id.
func (r *Registry) FindByID(id string) (*models.Station, error) {
	entry, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("station not found: %s", id)
	}
	return &entry.Station, nil
}

// Len reports the number of stations in the catalog.
func (r *Registry) Len() int {
	return len(r.stations)
}
