package models

import (
	"fmt"
	"strings"
	"time"
)

// OCRResult is the payload the image-recognition collaborator hands to the
// pipeline. Unknown shapes are rejected here, before they enter Intake.
type OCRResult struct {
	RawText         string  `json:"rawText"`
	StationText     string  `json:"stationTextRaw"`
	StationNameHint string  `json:"stationNameHint,omitempty"`
	Confidence      float64 `json:"confidence"`
	Detected        bool    `json:"detected"`
}

func (o OCRResult) Validate() error {
	if o.Confidence < 0 || o.Confidence > 1 {
		return fmt.Errorf("confidence out of range: %f", o.Confidence)
	}
	if o.Detected && strings.TrimSpace(o.StationText) == "" && strings.TrimSpace(o.StationNameHint) == "" {
		return fmt.Errorf("detected result carries no station text")
	}
	return nil
}

// StationName returns the text resolution should run against. The secondary
// hint is used only when the primary station text is blank.
func (o OCRResult) StationName() string {
	if strings.TrimSpace(o.StationText) != "" {
		return o.StationText
	}
	return o.StationNameHint
}

// GeofenceOutcome is the result of a geofence validation. DistanceMeters is
// nil when no device location was available to measure from.
type GeofenceOutcome struct {
	DistanceMeters *float64 `json:"distanceMeters"`
	RadiusMeters   float64  `json:"radiusMeters"`
	Passed         bool     `json:"passed"`
	Bypassed       bool     `json:"bypassed"`
}

type CheckInStatus string

const (
	CheckInStatusPending  CheckInStatus = "pending"
	CheckInStatusVerified CheckInStatus = "verified"
)

type VerificationMethod string

const (
	VerificationMethodGPS    VerificationMethod = "gps"
	VerificationMethodOCR    VerificationMethod = "ocr"
	VerificationMethodManual VerificationMethod = "manual"
)

// CheckInRecord is the persisted visit entry. SequenceNumber is 1-based and
// strictly increasing within an activity; it is assigned by the ledger at
// append time, never by the caller.
type CheckInRecord struct {
	ID                     string             `json:"id" dynamodbav:"id"`
	ActivityID             string             `json:"activityId" dynamodbav:"activityId"`
	StationID              string             `json:"stationId" dynamodbav:"stationId"`
	SequenceNumber         int                `json:"sequenceNumber" dynamodbav:"sequenceNumber"`
	Status                 CheckInStatus      `json:"status" dynamodbav:"status"`
	VerificationMethod     VerificationMethod `json:"verificationMethod" dynamodbav:"verificationMethod"`
	GeofenceDistanceMeters *float64           `json:"geofenceDistanceMeters,omitempty" dynamodbav:"geofenceDistanceMeters,omitempty"`
	CapturedAt             time.Time          `json:"capturedAt" dynamodbav:"capturedAt,unixtime"`
	VisitedAt              time.Time          `json:"visitedAt" dynamodbav:"visitedAt,unixtime"`
}

func (r CheckInRecord) Validate() error {
	if r.ActivityID == "" {
		return fmt.Errorf("missing activity id")
	}
	if r.StationID == "" {
		return fmt.Errorf("missing station id")
	}
	if r.SequenceNumber < 1 {
		return fmt.Errorf("sequence number must be 1-based, got %d", r.SequenceNumber)
	}
	switch r.Status {
	case CheckInStatusPending, CheckInStatusVerified:
	default:
		return fmt.Errorf("unknown status: %q", r.Status)
	}
	switch r.VerificationMethod {
	case VerificationMethodGPS, VerificationMethodOCR, VerificationMethodManual:
	default:
		return fmt.Errorf("unknown verification method: %q", r.VerificationMethod)
	}
	return nil
}
