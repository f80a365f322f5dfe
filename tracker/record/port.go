package record

import (
	"context"
	"time"

	"github.com/linearflow/linearflow/pkg/kernel"
)

type Repository interface {
	// Create creates a new record
	Create(ctx context.Context, rec *Record) error

	// Update updates an existing record
	Update(ctx context.Context, id kernel.RecordID, rec *Record) error

	// UpdateStage updates only the stage of a record and returns the
	// new mutation timestamp confirmed by the store
	UpdateStage(ctx context.Context, id kernel.RecordID, stage Stage) (time.Time, error)

	// UpdateAttachmentKey updates the stored attachment reference
	UpdateAttachmentKey(ctx context.Context, id kernel.RecordID, key kernel.AttachmentKey) error

	// GetByID retrieves a record by ID
	GetByID(ctx context.Context, id kernel.RecordID) (*Record, error)

	// Delete deletes a record by ID
	Delete(ctx context.Context, id kernel.RecordID) error

	// ListByOwner retrieves one owner's records with pagination
	ListByOwner(ctx context.Context, owner kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[Record], error)

	// ListAllByOwner retrieves every record of one owner, newest first
	ListAllByOwner(ctx context.Context, owner kernel.UserID) ([]Record, error)

	// CountByOwner counts one owner's records
	CountByOwner(ctx context.Context, owner kernel.UserID) (int64, error)
}
