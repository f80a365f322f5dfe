package pipeline

import (
	"context"
	"time"

	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/record"
)

// StageUpdate is the store's confirmation of a persisted stage change
type StageUpdate struct {
	UpdatedAt time.Time `json:"updated_at"`
}

// PersistenceClient is the durable store the coordinator writes through
// to. Ownership failures must come back as distinguishable typed errors,
// not generic ones.
type PersistenceClient interface {
	// UpdateStage persists a stage change and returns the confirmed
	// mutation timestamp
	UpdateStage(ctx context.Context, id kernel.RecordID, stage record.Stage) (*StageUpdate, error)

	// ListRecords fetches all records of one owner for view population
	ListRecords(ctx context.Context, owner kernel.UserID) ([]record.Record, error)

	// CreateRecord persists a new record
	CreateRecord(ctx context.Context, rec *record.Record) error

	// DeleteRecord removes a record
	DeleteRecord(ctx context.Context, id kernel.RecordID) error
}
