package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/stationhop/backend-go/internal/checkin"
	"github.com/stationhop/backend-go/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type CheckInResponse struct {
	APIResponse
	Result checkin.Result `json:"result"`
}

type ResolveResponse struct {
	APIResponse
	Resolved models.ResolvedStation `json:"resolvedStation"`
}

// ErrorResponse carries the full recovery payload of a failed check-in:
// error code, suggestions, the resolved station if resolution succeeded and
// the geofence outcome if one was measured. Nothing here is a dead end.
type ErrorResponse struct {
	APIResponse
	Error       string                  `json:"error"`
	Stage       string                  `json:"stage,omitempty"`
	Code        string                  `json:"code,omitempty"`
	Suggestions []models.Suggestion     `json:"suggestions,omitempty"`
	Resolved    *models.ResolvedStation `json:"resolvedStation,omitempty"`
	Outcome     *models.GeofenceOutcome `json:"geofenceOutcome,omitempty"`
}

func NewCheckInResponse(result checkin.Result) *CheckInResponse {
	return &CheckInResponse{
		APIResponse: APIResponse{ResponseType: "checkin"},
		Result:      result,
	}
}

func NewResolveResponse(resolved models.ResolvedStation) *ResolveResponse {
	return &ResolveResponse{
		APIResponse: APIResponse{ResponseType: "resolution"},
		Resolved:    resolved,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

// NewCheckInErrorResponse maps a pipeline failure onto the wire shape.
func NewCheckInErrorResponse(cerr *checkin.CheckInError) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       cerr.Message,
		Stage:       string(cerr.Stage),
		Code:        string(cerr.Code),
		Suggestions: cerr.Suggestions,
		Resolved:    cerr.Resolved,
		Outcome:     cerr.Outcome,
	}
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	return Respond(NewErrorResponse(message), statusCode)
}

// CheckInError renders a pipeline failure. Every code is a client-side
// condition, so everything maps to 4xx.
func CheckInError(cerr *checkin.CheckInError) (events.APIGatewayProxyResponse, error) {
	statusCode := http.StatusUnprocessableEntity
	switch cerr.Code {
	case checkin.ErrBadInput:
		statusCode = http.StatusBadRequest
	case checkin.ErrNotFound:
		statusCode = http.StatusNotFound
	case checkin.ErrAmbiguous:
		statusCode = http.StatusConflict
	}
	return Respond(NewCheckInErrorResponse(cerr), statusCode)
}

// Respond marshals any envelope with the standard headers.
func Respond(body interface{}, statusCode int) (events.APIGatewayProxyResponse, error) {
	jsonBody, _ := json.Marshal(body)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(jsonBody),
	}, nil
}

type InvalidCoordinatesError struct{}

func (e InvalidCoordinatesError) Error() string {
	return "invalid coordinates"
}

// ParseCoordinates extracts an optional device fix from query parameters.
// Both lat and lon must be present to count; a missing fix is nil, not an
// error.
func ParseCoordinates(params map[string]string) (*models.Coordinates, error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]

	if !hasLat || !hasLon {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, err
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, err
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, InvalidCoordinatesError{}
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
