package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationhop/backend-go/internal/checkin"
	"github.com/stationhop/backend-go/internal/models"
)

func TestSuccess(t *testing.T) {
	t.Parallel()

	resp, err := Success(NewResolveResponse(models.ResolvedStation{
		StationID:   "940GZZLUPAC",
		DisplayName: "Paddington",
		Rule:        models.MatchRuleExact,
		Score:       1.0,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var body ResolveResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "resolution", body.ResponseType)
	assert.Equal(t, "940GZZLUPAC", body.Resolved.StationID)
}

func TestError(t *testing.T) {
	t.Parallel()

	resp, err := Error("nope", http.StatusBadRequest)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "error", body.ResponseType)
	assert.Equal(t, "nope", body.Error)
}

func TestCheckInErrorStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code checkin.ErrorCode
		want int
	}{
		{checkin.ErrBadInput, http.StatusBadRequest},
		{checkin.ErrNotFound, http.StatusNotFound},
		{checkin.ErrAmbiguous, http.StatusConflict},
		{checkin.ErrNoRoundel, http.StatusUnprocessableEntity},
		{checkin.ErrGPSUnavailable, http.StatusUnprocessableEntity},
		{checkin.ErrOutOfRange, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.code), func(t *testing.T) {
			t.Parallel()
			resp, err := CheckInError(&checkin.CheckInError{
				Stage:   checkin.StageResolve,
				Code:    tt.code,
				Message: "failed",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestCheckInErrorCarriesRecoveryPayload(t *testing.T) {
	t.Parallel()

	distance := 612.0
	resp, err := CheckInError(&checkin.CheckInError{
		Stage:   checkin.StageGeofence,
		Code:    checkin.ErrOutOfRange,
		Message: "too far from the station",
		Resolved: &models.ResolvedStation{
			StationID:   "940GZZLUPAC",
			DisplayName: "Paddington",
			Rule:        models.MatchRuleExact,
			Score:       1.0,
		},
		Outcome: &models.GeofenceOutcome{
			DistanceMeters: &distance,
			RadiusMeters:   500,
		},
	})
	require.NoError(t, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "out_of_range", body.Code)
	assert.Equal(t, "geofence", body.Stage)
	require.NotNil(t, body.Resolved)
	assert.Equal(t, "940GZZLUPAC", body.Resolved.StationID)
	require.NotNil(t, body.Outcome)
	require.NotNil(t, body.Outcome.DistanceMeters)
	assert.Equal(t, 612.0, *body.Outcome.DistanceMeters)
}

func TestParseCoordinates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  map[string]string
		want    *models.Coordinates
		wantErr bool
	}{
		{
			name:   "valid coordinates",
			params: map[string]string{"lat": "51.5154", "lon": "-0.1755"},
			want:   &models.Coordinates{Latitude: 51.5154, Longitude: -0.1755},
		},
		{
			name:   "missing pair means no fix",
			params: map[string]string{},
			want:   nil,
		},
		{
			name:   "lat without lon means no fix",
			params: map[string]string{"lat": "51.5154"},
			want:   nil,
		},
		{
			name:    "unparseable latitude",
			params:  map[string]string{"lat": "north", "lon": "-0.1755"},
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			params:  map[string]string{"lat": "95", "lon": "0"},
			wantErr: true,
		},
		{
			name:    "longitude out of range",
			params:  map[string]string{"lat": "51", "lon": "-190"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCoordinates(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
