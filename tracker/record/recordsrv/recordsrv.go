package recordsrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/linearflow/linearflow/pkg/errx"
	"github.com/linearflow/linearflow/pkg/fsx"
	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/pkg/logx"
	"github.com/linearflow/linearflow/tracker/pipeline"
	"github.com/linearflow/linearflow/tracker/record"
)

// Invalidator is notified after every successful mutation so cached
// aggregates can be dropped
type Invalidator interface {
	Invalidate(ctx context.Context, owner kernel.UserID)
}

// RecordService provides business operations for application records.
// Every operation takes the acting principal explicitly; an ownership
// mismatch is reported as not-found so the existence of other users'
// records never leaks.
type RecordService struct {
	recordRepo  record.Repository
	fileSystem  fsx.FileSystem
	invalidator Invalidator
}

// NewRecordService creates a new instance of the record service.
// invalidator may be nil.
func NewRecordService(recordRepo record.Repository, fileSystem fsx.FileSystem, invalidator Invalidator) *RecordService {
	return &RecordService{
		recordRepo:  recordRepo,
		fileSystem:  fileSystem,
		invalidator: invalidator,
	}
}

// CreateRecord creates a new record owned by the acting principal
func (s *RecordService) CreateRecord(ctx context.Context, principal kernel.UserID, req record.CreateRecordRequest) (*record.Record, error) {
	stage := record.StageWishlist
	if req.Stage != "" {
		parsed, err := record.ParseStage(req.Stage)
		if err != nil {
			return nil, err
		}
		stage = parsed
	}

	if err := record.ValidateSalaryRange(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}

	now := time.Now()
	appliedAt := now
	if req.AppliedAt != nil {
		appliedAt = *req.AppliedAt
	}

	newRecord := &record.Record{
		ID:        kernel.NewRecordID(uuid.NewString()),
		Owner:     principal,
		Company:   req.Company,
		Title:     req.Title,
		Stage:     stage,
		SalaryMin: req.SalaryMin,
		SalaryMax: req.SalaryMax,
		Notes:     req.Notes,
		AppliedAt: appliedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.recordRepo.Create(ctx, newRecord); err != nil {
		return nil, errx.Wrap(err, "failed to create record", errx.TypeInternal)
	}

	s.invalidate(ctx, principal)
	return newRecord, nil
}

// GetRecord retrieves one of the principal's records
func (s *RecordService) GetRecord(ctx context.Context, principal kernel.UserID, id kernel.RecordID) (*record.RecordResponse, error) {
	rec, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return rec.ToResponse(), nil
}

// ListRecords retrieves the principal's records with pagination
func (s *RecordService) ListRecords(ctx context.Context, principal kernel.UserID, pagination kernel.PaginationOptions) (*record.PaginatedRecordsResponse, error) {
	records, err := s.recordRepo.ListByOwner(ctx, principal, pagination)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list records", errx.TypeInternal)
	}

	responses := make([]record.RecordResponse, 0, len(records.Items))
	for _, rec := range records.Items {
		responses = append(responses, *rec.ToResponse())
	}

	return &kernel.Paginated[record.RecordResponse]{
		Items: responses,
		Page:  records.Page,
		Empty: records.Empty,
	}, nil
}

// UpdateRecord applies field edits to one of the principal's records
func (s *RecordService) UpdateRecord(ctx context.Context, principal kernel.UserID, id kernel.RecordID, req record.UpdateRecordRequest) (*record.Record, error) {
	rec, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	// Track if any changes were made
	updated := false

	if req.Company != nil && *req.Company != rec.Company {
		rec.Company = *req.Company
		updated = true
	}

	if req.Title != nil && *req.Title != rec.Title {
		rec.Title = *req.Title
		updated = true
	}

	if req.SalaryMin != nil {
		rec.SalaryMin = req.SalaryMin
		updated = true
	}

	if req.SalaryMax != nil {
		rec.SalaryMax = req.SalaryMax
		updated = true
	}

	if req.Notes != nil && *req.Notes != rec.Notes {
		rec.Notes = *req.Notes
		updated = true
	}

	if req.AppliedAt != nil && !req.AppliedAt.Equal(rec.AppliedAt) {
		// Historical edits are allowed, applied_at may move freely
		rec.AppliedAt = *req.AppliedAt
		updated = true
	}

	if err := record.ValidateSalaryRange(rec.SalaryMin, rec.SalaryMax); err != nil {
		return nil, err
	}

	if updated {
		rec.Touch()

		if err := s.recordRepo.Update(ctx, id, rec); err != nil {
			return nil, errx.Wrap(err, "failed to update record", errx.TypeInternal)
		}
		s.invalidate(ctx, principal)
	}

	return rec, nil
}

// UpdateStage validates and persists a stage change for one of the
// principal's records, returning the confirmed mutation timestamp
func (s *RecordService) UpdateStage(ctx context.Context, principal kernel.UserID, id kernel.RecordID, requested string) (*record.MoveStageResponse, error) {
	rec, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	stage, err := pipeline.ValidateTransition(rec, principal, requested)
	if err != nil {
		return nil, err
	}

	if stage == rec.Stage {
		// No-op move: nothing persisted, updated_at untouched
		return &record.MoveStageResponse{ID: rec.ID, Stage: rec.Stage, UpdatedAt: rec.UpdatedAt}, nil
	}

	updatedAt, err := s.recordRepo.UpdateStage(ctx, id, stage)
	if err != nil {
		return nil, errx.Wrap(err, "failed to update record stage", errx.TypeInternal)
	}

	s.invalidate(ctx, principal)
	return &record.MoveStageResponse{ID: rec.ID, Stage: stage, UpdatedAt: updatedAt}, nil
}

// DeleteRecord deletes one of the principal's records along with its
// stored attachment
func (s *RecordService) DeleteRecord(ctx context.Context, principal kernel.UserID, id kernel.RecordID) error {
	rec, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return err
	}

	if rec.HasAttachment() && s.fileSystem != nil {
		if err := s.fileSystem.DeleteFile(ctx, string(rec.AttachmentKey)); err != nil {
			logx.Warnf("failed to delete attachment %s for record %s: %v", rec.AttachmentKey, id, err)
		}
	}

	if err := s.recordRepo.Delete(ctx, id); err != nil {
		return errx.Wrap(err, "failed to delete record", errx.TypeInternal)
	}

	s.invalidate(ctx, principal)
	return nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// getOwned fetches a record and enforces the not-found ownership policy
func (s *RecordService) getOwned(ctx context.Context, principal kernel.UserID, id kernel.RecordID) (*record.Record, error) {
	rec, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		if errx.IsCode(err, record.CodeRecordNotFound) {
			return nil, err
		}
		return nil, errx.Wrap(err, "failed to get record", errx.TypeInternal)
	}

	if !rec.IsOwnedBy(principal) {
		// Foreign records look exactly like missing ones
		return nil, record.ErrRecordNotFound().WithDetail("record_id", id.String())
	}

	return rec, nil
}

func (s *RecordService) invalidate(ctx context.Context, owner kernel.UserID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, owner)
	}
}
