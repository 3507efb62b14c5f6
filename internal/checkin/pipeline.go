package checkin

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stationhop/backend-go/internal/config"
	"github.com/stationhop/backend-go/internal/geofence"
	"github.com/stationhop/backend-go/internal/ledger"
	"github.com/stationhop/backend-go/internal/match"
	"github.com/stationhop/backend-go/internal/models"
	"github.com/stationhop/backend-go/internal/observability"
	"github.com/stationhop/backend-go/internal/registry"
)

// Request is one check-in attempt: the OCR collaborator's result plus an
// optional device fix, tied to the activity being recorded.
type Request struct {
	ActivityID     string
	OCR            models.OCRResult
	DeviceLocation *models.Coordinates
	CapturedAt     time.Time
}

// Result is a successful (verified or accepted-pending) check-in.
type Result struct {
	Record   models.CheckInRecord   `json:"record"`
	Resolved models.ResolvedStation `json:"resolvedStation"`
	Outcome  models.GeofenceOutcome `json:"geofenceOutcome"`
}

// Pipeline runs the check-in state machine:
// Intake → Resolve → Geofence → Persist → Done.
// Every stage either advances or terminates with a *CheckInError; nothing is
// retried automatically, and a failed stage returns enough context for the
// caller to re-enter at a later stage without repeating earlier work.
type Pipeline struct {
	registry *registry.Registry
	resolver *match.Resolver
	ledger   ledger.Ledger
	cfg      *config.PipelineConfig
}

func New(reg *registry.Registry, resolver *match.Resolver, visitLedger ledger.Ledger, cfg *config.PipelineConfig) *Pipeline {
	return &Pipeline{
		registry: reg,
		resolver: resolver,
		ledger:   visitLedger,
		cfg:      cfg,
	}
}

// CheckIn runs the full state machine for one attempt.
func (p *Pipeline) CheckIn(ctx context.Context, req Request) (*Result, *CheckInError) {
	// Intake
	if err := p.intake(req); err != nil {
		return nil, p.fail(err)
	}

	// Resolve
	resolved, cerr := p.resolve(req)
	if cerr != nil {
		return nil, p.fail(cerr)
	}

	return p.verifyAndPersist(ctx, req, resolved, models.VerificationMethodGPS)
}

// ResolveDirect re-enters the pipeline at Geofence with a user-picked
// station, skipping OCR re-capture and name matching entirely. The pick is
// recorded as a manual verification even when the geofence passes.
func (p *Pipeline) ResolveDirect(ctx context.Context, req Request, stationID string) (*Result, *CheckInError) {
	station, err := p.registry.FindByID(stationID)
	if err != nil {
		return nil, p.fail(&CheckInError{
			Stage:   StageResolve,
			Code:    ErrNotFound,
			Message: "picked station is not in the registry",
			Err:     err,
		})
	}

	resolved := &models.ResolvedStation{
		StationID:   station.ID,
		DisplayName: station.CanonicalName,
		Latitude:    station.Latitude,
		Longitude:   station.Longitude,
		Rule:        models.MatchRuleExact,
		Score:       1.0,
	}
	return p.verifyAndPersist(ctx, req, resolved, models.VerificationMethodManual)
}

// PersistPending re-enters at Persist after the caller explicitly accepted a
// pending save for a geofence failure. The resolved station comes from the
// failed attempt's error payload.
func (p *Pipeline) PersistPending(ctx context.Context, req Request, resolved models.ResolvedStation, outcome *models.GeofenceOutcome) (*Result, *CheckInError) {
	// The resolved station round-trips through the client; only a registry
	// member may enter the ledger.
	if _, err := p.registry.FindByID(resolved.StationID); err != nil {
		return nil, p.fail(&CheckInError{
			Stage:   StagePersist,
			Code:    ErrNotFound,
			Message: "pending station is not in the registry",
			Err:     err,
		})
	}

	var distance *float64
	if outcome != nil {
		distance = outcome.DistanceMeters
	}
	record, cerr := p.persist(ctx, req, resolved, models.CheckInStatusPending, models.VerificationMethodManual, distance)
	if cerr != nil {
		return nil, p.fail(cerr)
	}

	observability.RecordOutcome(string(models.CheckInStatusPending))
	result := &Result{Record: *record, Resolved: resolved}
	if outcome != nil {
		result.Outcome = *outcome
	}
	return result, nil
}

func (p *Pipeline) intake(req Request) *CheckInError {
	if err := req.OCR.Validate(); err != nil {
		return &CheckInError{
			Stage:   StageIntake,
			Code:    ErrBadInput,
			Message: "malformed OCR payload",
			Err:     err,
		}
	}
	if !req.OCR.Detected {
		return &CheckInError{
			Stage:      StageIntake,
			Code:       ErrNoRoundel,
			Message:    "no station marker detected; retake the photo",
			Confidence: req.OCR.Confidence,
		}
	}
	return nil
}

func (p *Pipeline) resolve(req Request) (*models.ResolvedStation, *CheckInError) {
	resolved, err := p.resolver.Resolve(req.OCR.StationName(), req.DeviceLocation)
	if err == nil {
		log.Debug().
			Str("station_id", resolved.StationID).
			Str("rule", string(resolved.Rule)).
			Float64("score", resolved.Score).
			Msg("Station resolved")
		observability.RecordMatchRule(string(resolved.Rule))
		return resolved, nil
	}

	var resErr *match.ResolutionError
	if errors.As(err, &resErr) {
		code := ErrNotFound
		message := "no station matched; closest candidates attached"
		if resErr.Reason == match.ReasonAmbiguous {
			code = ErrAmbiguous
			message = "multiple stations matched; pick one of the suggestions"
		}
		return nil, &CheckInError{
			Stage:       StageResolve,
			Code:        code,
			Message:     message,
			Suggestions: resErr.Suggestions,
			Confidence:  req.OCR.Confidence,
		}
	}

	return nil, &CheckInError{
		Stage:      StageResolve,
		Code:       ErrBadInput,
		Message:    "station text unusable for matching",
		Confidence: req.OCR.Confidence,
		Err:        err,
	}
}

func (p *Pipeline) verifyAndPersist(ctx context.Context, req Request, resolved *models.ResolvedStation, method models.VerificationMethod) (*Result, *CheckInError) {
	// Geofence
	outcome := geofence.Validate(req.DeviceLocation, resolved.Coordinates(), p.cfg.GeofenceRadiusMeters, p.cfg.SimulationMode)
	if !outcome.Passed {
		code := ErrOutOfRange
		message := "too far from the station; move closer or save as pending"
		if req.DeviceLocation == nil {
			code = ErrGPSUnavailable
			message = "no device location; retry with GPS or save as pending"
		}
		return nil, p.fail(&CheckInError{
			Stage:      StageGeofence,
			Code:       code,
			Message:    message,
			Resolved:   resolved,
			Outcome:    &outcome,
			Confidence: req.OCR.Confidence,
		})
	}

	// Persist. A bypassed geofence downgrades gps verification to ocr;
	// manual picks stay manual either way.
	if method == models.VerificationMethodGPS && outcome.Bypassed {
		method = models.VerificationMethodOCR
	}
	record, cerr := p.persist(ctx, req, *resolved, models.CheckInStatusVerified, method, outcome.DistanceMeters)
	if cerr != nil {
		return nil, p.fail(cerr)
	}

	// Done
	observability.RecordOutcome(string(models.CheckInStatusVerified))
	return &Result{
		Record:   *record,
		Resolved: *resolved,
		Outcome:  outcome,
	}, nil
}

func (p *Pipeline) persist(ctx context.Context, req Request, resolved models.ResolvedStation, status models.CheckInStatus, method models.VerificationMethod, distance *float64) (*models.CheckInRecord, *CheckInError) {
	capturedAt := req.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	record, err := p.ledger.Append(ctx, ledger.AppendEntry{
		ActivityID:             req.ActivityID,
		StationID:              resolved.StationID,
		Status:                 status,
		VerificationMethod:     method,
		GeofenceDistanceMeters: distance,
		CapturedAt:             capturedAt,
	})
	if err != nil {
		return nil, &CheckInError{
			Stage:    StagePersist,
			Code:     ErrLedgerWrite,
			Message:  "could not write the visit record; retry the save",
			Resolved: &resolved,
			Err:      err,
		}
	}

	log.Info().
		Str("activity_id", record.ActivityID).
		Str("station_id", record.StationID).
		Int("sequence_number", record.SequenceNumber).
		Str("status", string(record.Status)).
		Str("method", string(record.VerificationMethod)).
		Msg("Check-in persisted")

	return record, nil
}

// fail counts the terminal outcome and returns the error unchanged.
func (p *Pipeline) fail(cerr *CheckInError) *CheckInError {
	observability.RecordOutcome(string(cerr.Code))
	log.Debug().
		Str("stage", string(cerr.Stage)).
		Str("code", string(cerr.Code)).
		Msg("Check-in terminated")
	return cerr
}
