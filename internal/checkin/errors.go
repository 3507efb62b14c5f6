package checkin

import (
	"fmt"

	"github.com/stationhop/backend-go/internal/models"
)

// Stage names the pipeline step a failure terminated.
type Stage string

const (
	StageIntake   Stage = "intake"
	StageResolve  Stage = "resolve"
	StageGeofence Stage = "geofence"
	StagePersist  Stage = "persist"
)

// ErrorCode classifies a pipeline failure. Every code is recoverable by the
// caller; the payload on CheckInError carries what the recovery UI needs.
type ErrorCode string

const (
	ErrNoRoundel      ErrorCode = "no_roundel"
	ErrNotFound       ErrorCode = "not_found"
	ErrAmbiguous      ErrorCode = "ambiguous"
	ErrGPSUnavailable ErrorCode = "gps_unavailable"
	ErrOutOfRange     ErrorCode = "out_of_range"
	ErrLedgerWrite    ErrorCode = "ledger_write_failed"
	ErrBadInput       ErrorCode = "bad_input"
)

// CheckInError is the discriminated failure result of a check-in attempt.
// A geofence failure retains the resolved station, outcome and OCR
// confidence so the caller can offer a pending save without re-running
// OCR or resolution.
type CheckInError struct {
	Stage       Stage                   `json:"stage"`
	Code        ErrorCode               `json:"code"`
	Message     string                  `json:"message"`
	Suggestions []models.Suggestion     `json:"suggestions,omitempty"`
	Resolved    *models.ResolvedStation `json:"resolvedStation,omitempty"`
	Outcome     *models.GeofenceOutcome `json:"geofenceOutcome,omitempty"`
	Confidence  float64                 `json:"ocrConfidence,omitempty"`
	Err         error                   `json:"-"`
}

func (e *CheckInError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("check-in failed at %s: %s: %v", e.Stage, e.Code, e.Err)
	}
	return fmt.Sprintf("check-in failed at %s: %s", e.Stage, e.Code)
}

func (e *CheckInError) Unwrap() error {
	return e.Err
}
