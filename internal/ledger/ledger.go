package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/stationhop/backend-go/internal/models"
)

var ErrNotFound = errors.New("ledger: not found")

// AppendEntry is everything the pipeline supplies for one check-in. The
// ledger assigns the record ID, the sequence number and VisitedAt.
type AppendEntry struct {
	ActivityID             string
	StationID              string
	Status                 models.CheckInStatus
	VerificationMethod     models.VerificationMethod
	GeofenceDistanceMeters *float64
	CapturedAt             time.Time
}

// Ledger is the append-only visit store. Append must hand out unique,
// monotonically increasing 1-based sequence numbers per activity even under
// concurrent calls; appends for different activities must not serialize
// against each other.
type Ledger interface {
	Append(ctx context.Context, entry AppendEntry) (*models.CheckInRecord, error)
	ListByActivity(ctx context.Context, activityID string) ([]models.CheckInRecord, error)
}
