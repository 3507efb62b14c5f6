package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stationhop/backend-go/internal/models"
)

// activityState is one activity's slice of the ledger: its counter and its
// records, guarded by its own lock so activities never contend with each
// other.
type activityState struct {
	mu      sync.Mutex
	nextSeq int
	records []models.CheckInRecord
}

// Memory is the in-memory ledger used for local runs and tests.
type Memory struct {
	mu         sync.Mutex // guards the activities map only
	activities map[string]*activityState
}

func NewMemory() *Memory {
	return &Memory{
		activities: map[string]*activityState{},
	}
}

func (m *Memory) activity(activityID string) *activityState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.activities[activityID]
	if !ok {
		state = &activityState{nextSeq: 1}
		m.activities[activityID] = state
	}
	return state
}

func (m *Memory) Append(_ context.Context, entry AppendEntry) (*models.CheckInRecord, error) {
	if entry.ActivityID == "" {
		return nil, fmt.Errorf("missing activity id")
	}

	state := m.activity(entry.ActivityID)

	state.mu.Lock()
	defer state.mu.Unlock()

	record := models.CheckInRecord{
		ID:                     uuid.New().String(),
		ActivityID:             entry.ActivityID,
		StationID:              entry.StationID,
		SequenceNumber:         state.nextSeq,
		Status:                 entry.Status,
		VerificationMethod:     entry.VerificationMethod,
		GeofenceDistanceMeters: entry.GeofenceDistanceMeters,
		CapturedAt:             entry.CapturedAt,
		VisitedAt:              time.Now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid check-in record: %w", err)
	}

	state.nextSeq++
	state.records = append(state.records, record)
	return &record, nil
}

func (m *Memory) ListByActivity(_ context.Context, activityID string) ([]models.CheckInRecord, error) {
	m.mu.Lock()
	state, ok := m.activities[activityID]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	out := make([]models.CheckInRecord, len(state.records))
	copy(out, state.records)
	return out, nil
}
