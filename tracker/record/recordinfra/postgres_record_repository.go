package recordinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/record"
)

// PostgresRecordRepository implements record.Repository using PostgreSQL
type PostgresRecordRepository struct {
	db *sqlx.DB
}

// NewPostgresRecordRepository creates a new PostgreSQL record repository
func NewPostgresRecordRepository(db *sqlx.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{
		db: db,
	}
}

// ============================================================================
// Database Models
// ============================================================================

type recordModel struct {
	ID            string    `db:"id"`
	OwnerID       string    `db:"owner_id"`
	Company       string    `db:"company"`
	Title         string    `db:"title"`
	Stage         string    `db:"stage"`
	SalaryMin     *int64    `db:"salary_min"`
	SalaryMax     *int64    `db:"salary_max"`
	Notes         string    `db:"notes"`
	AttachmentKey string    `db:"attachment_key"`
	AppliedAt     time.Time `db:"applied_at"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *recordModel) toEntity() *record.Record {
	return &record.Record{
		ID:            kernel.RecordID(m.ID),
		Owner:         kernel.UserID(m.OwnerID),
		Company:       kernel.CompanyName(m.Company),
		Title:         kernel.RoleTitle(m.Title),
		Stage:         record.Stage(m.Stage),
		SalaryMin:     m.SalaryMin,
		SalaryMax:     m.SalaryMax,
		Notes:         m.Notes,
		AttachmentKey: kernel.AttachmentKey(m.AttachmentKey),
		AppliedAt:     m.AppliedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(rec *record.Record) *recordModel {
	return &recordModel{
		ID:            string(rec.ID),
		OwnerID:       string(rec.Owner),
		Company:       string(rec.Company),
		Title:         string(rec.Title),
		Stage:         string(rec.Stage),
		SalaryMin:     rec.SalaryMin,
		SalaryMax:     rec.SalaryMax,
		Notes:         rec.Notes,
		AttachmentKey: string(rec.AttachmentKey),
		AppliedAt:     rec.AppliedAt,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

// Create creates a new record
func (r *PostgresRecordRepository) Create(ctx context.Context, rec *record.Record) error {
	model := fromEntity(rec)

	query := `
		INSERT INTO records (
			id, owner_id, company, title, stage, salary_min, salary_max,
			notes, attachment_key, applied_at, created_at, updated_at
		) VALUES (
			:id, :owner_id, :company, :title, :stage, :salary_min, :salary_max,
			:notes, :attachment_key, :applied_at, :created_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return record.ErrRecordAlreadyExists()
			}
			if pqErr.Code == "23503" { // foreign_key_violation
				return fmt.Errorf("invalid foreign key reference: %w", err)
			}
		}
		return fmt.Errorf("failed to create record: %w", err)
	}

	return nil
}

// Update updates an existing record
func (r *PostgresRecordRepository) Update(ctx context.Context, id kernel.RecordID, rec *record.Record) error {
	model := fromEntity(rec)

	query := `
		UPDATE records SET
			company = :company,
			title = :title,
			stage = :stage,
			salary_min = :salary_min,
			salary_max = :salary_max,
			notes = :notes,
			attachment_key = :attachment_key,
			applied_at = :applied_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return record.ErrRecordNotFound()
	}

	return nil
}

// UpdateStage updates only the stage column and returns the confirmed
// mutation timestamp. updated_at never moves backwards even if clocks do.
func (r *PostgresRecordRepository) UpdateStage(ctx context.Context, id kernel.RecordID, stage record.Stage) (time.Time, error) {
	query := `
		UPDATE records SET
			stage = $1,
			updated_at = GREATEST(NOW(), updated_at + interval '1 microsecond')
		WHERE id = $2
		RETURNING updated_at
	`

	var updatedAt time.Time
	err := r.db.GetContext(ctx, &updatedAt, query, string(stage), string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, record.ErrRecordNotFound()
		}
		return time.Time{}, fmt.Errorf("failed to update record stage: %w", err)
	}

	return updatedAt, nil
}

// UpdateAttachmentKey updates the stored attachment reference
func (r *PostgresRecordRepository) UpdateAttachmentKey(ctx context.Context, id kernel.RecordID, key kernel.AttachmentKey) error {
	query := `
		UPDATE records SET
			attachment_key = $1,
			updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, string(key), string(id))
	if err != nil {
		return fmt.Errorf("failed to update attachment key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return record.ErrRecordNotFound()
	}

	return nil
}

// GetByID retrieves a record by ID
func (r *PostgresRecordRepository) GetByID(ctx context.Context, id kernel.RecordID) (*record.Record, error) {
	query := `
		SELECT
			id, owner_id, company, title, stage, salary_min, salary_max,
			notes, attachment_key, applied_at, created_at, updated_at
		FROM records
		WHERE id = $1
	`

	var model recordModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, record.ErrRecordNotFound()
		}
		return nil, fmt.Errorf("failed to get record by id: %w", err)
	}

	return model.toEntity(), nil
}

// Delete deletes a record by ID
func (r *PostgresRecordRepository) Delete(ctx context.Context, id kernel.RecordID) error {
	query := `DELETE FROM records WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return record.ErrRecordNotFound()
	}

	return nil
}

// ListByOwner retrieves one owner's records with pagination
func (r *PostgresRecordRepository) ListByOwner(ctx context.Context, owner kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[record.Record], error) {
	pagination = pagination.Normalize()

	// Count total
	var total int
	countQuery := `SELECT COUNT(*) FROM records WHERE owner_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, string(owner)); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	// Get paginated results
	query := `
		SELECT
			id, owner_id, company, title, stage, salary_min, salary_max,
			notes, attachment_key, applied_at, created_at, updated_at
		FROM records
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	var models []recordModel
	err := r.db.SelectContext(ctx, &models, query, string(owner), pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	// Convert to entities
	entities := make([]record.Record, 0, len(models))
	for _, model := range models {
		entities = append(entities, *model.toEntity())
	}

	return kernel.NewPaginated(entities, pagination, total), nil
}

// ListAllByOwner retrieves every record of one owner, newest first
func (r *PostgresRecordRepository) ListAllByOwner(ctx context.Context, owner kernel.UserID) ([]record.Record, error) {
	query := `
		SELECT
			id, owner_id, company, title, stage, salary_min, salary_max,
			notes, attachment_key, applied_at, created_at, updated_at
		FROM records
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`

	var models []recordModel
	err := r.db.SelectContext(ctx, &models, query, string(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to list records by owner: %w", err)
	}

	entities := make([]record.Record, 0, len(models))
	for _, model := range models {
		entities = append(entities, *model.toEntity())
	}

	return entities, nil
}

// CountByOwner counts one owner's records
func (r *PostgresRecordRepository) CountByOwner(ctx context.Context, owner kernel.UserID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM records WHERE owner_id = $1`

	if err := r.db.GetContext(ctx, &count, query, string(owner)); err != nil {
		return 0, fmt.Errorf("failed to count records by owner: %w", err)
	}

	return count, nil
}
