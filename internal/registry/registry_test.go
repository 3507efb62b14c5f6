package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationhop/backend-go/internal/models"
)

func testStations() []models.Station {
	return []models.Station{
		{
			ID:            "940GZZLUKSX",
			CanonicalName: "King's Cross St. Pancras",
			Aliases:       []string{"Kings Cross St Pancras", "Kings Cross", "KINGS CROSS ST PANCRAS"},
			Latitude:      51.5308,
			Longitude:     -0.1238,
			Zone:          "1",
			Lines:         []string{"Victoria", "Piccadilly", "Northern"},
		},
		{
			ID:            "940GZZLUHSD",
			CanonicalName: "Hammersmith",
			Latitude:      51.4926,
			Longitude:     -0.2229,
			Zone:          "2",
			Lines:         []string{"District", "Piccadilly"},
		},
		{
			ID:            "940GZZLUHSC",
			CanonicalName: "Hammersmith",
			Latitude:      51.4937,
			Longitude:     -0.2251,
			Zone:          "2",
			Lines:         []string{"Hammersmith & City", "Circle"},
		},
	}
}

func TestNewIndexesNameSpace(t *testing.T) {
	t.Parallel()

	r, err := New(testStations())
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())

	entry := r.Stations()[0]
	assert.Equal(t, "kings cross st pancras", entry.NormalizedName)
	// the alias that normalizes identically to the canonical name is dropped,
	// as is the duplicate uppercase one
	assert.Equal(t, []string{"kings cross"}, entry.NormalizedAliases)
}

func TestNewAllowsDuplicateNames(t *testing.T) {
	t.Parallel()

	// two Hammersmiths are a legal registry, not a load error
	r, err := New(testStations())
	require.NoError(t, err)

	var hammersmiths int
	for _, e := range r.Stations() {
		if e.NormalizedName == "hammersmith" {
			hammersmiths++
		}
	}
	assert.Equal(t, 2, hammersmiths)
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	stations := testStations()
	stations[1].ID = stations[0].ID

	_, err := New(stations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate station id")
}

func TestNewRejectsEmptyID(t *testing.T) {
	t.Parallel()

	stations := testStations()
	stations[0].ID = ""

	_, err := New(stations)
	assert.Error(t, err)
}

func TestNewRejectsUnmatchableName(t *testing.T) {
	t.Parallel()

	stations := testStations()
	stations[0].CanonicalName = "?!"

	_, err := New(stations)
	assert.Error(t, err)
}

func TestFindByID(t *testing.T) {
	t.Parallel()

	r, err := New(testStations())
	require.NoError(t, err)

	station, err := r.FindByID("940GZZLUHSC")
	require.NoError(t, err)
	assert.Equal(t, "Hammersmith", station.CanonicalName)
	assert.Contains(t, station.Lines, "Circle")

	_, err = r.FindByID("nope")
	assert.Error(t, err)
}

func TestLoadFromJSON(t *testing.T) {
	t.Parallel()

	doc := `{
		"stations": [
			{
				"id": "940GZZLUPAC",
				"canonicalName": "Paddington",
				"aliases": ["Paddington (Bakerloo)"],
				"latitude": 51.5154,
				"longitude": -0.1755,
				"zone": "1",
				"lines": ["Bakerloo"]
			}
		]
	}`

	r, err := LoadFromJSON(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "paddington", r.Stations()[0].NormalizedName)
}

func TestLoadFromJSONRejectsEmptyCatalog(t *testing.T) {
	t.Parallel()

	_, err := LoadFromJSON(strings.NewReader(`{"stations": []}`))
	assert.Error(t, err)

	_, err = LoadFromJSON(strings.NewReader(`not json`))
	assert.Error(t, err)
}
