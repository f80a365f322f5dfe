package record

import (
	"time"

	"github.com/linearflow/linearflow/pkg/kernel"
)

// CreateRecordRequest - DTO for creating a new record
type CreateRecordRequest struct {
	Company   kernel.CompanyName `json:"company" validate:"required,min=1,max=200"`
	Title     kernel.RoleTitle   `json:"title" validate:"required,min=1,max=200"`
	Stage     string             `json:"stage,omitempty"`
	SalaryMin *int64             `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax *int64             `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Notes     string             `json:"notes,omitempty" validate:"max=10000"`
	AppliedAt *time.Time         `json:"applied_at,omitempty"`
}

// UpdateRecordRequest - DTO for editing record fields
type UpdateRecordRequest struct {
	Company   *kernel.CompanyName `json:"company,omitempty" validate:"omitempty,min=1,max=200"`
	Title     *kernel.RoleTitle   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	SalaryMin *int64              `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax *int64              `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Notes     *string             `json:"notes,omitempty" validate:"omitempty,max=10000"`
	AppliedAt *time.Time          `json:"applied_at,omitempty"`
}

// MoveStageRequest - DTO for a stage change
type MoveStageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

// RecordResponse - DTO for returning record data
type RecordResponse struct {
	ID            kernel.RecordID    `json:"id"`
	Company       kernel.CompanyName `json:"company"`
	Title         kernel.RoleTitle   `json:"title"`
	Stage         Stage              `json:"stage"`
	SalaryMin     *int64             `json:"salary_min,omitempty"`
	SalaryMax     *int64             `json:"salary_max,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	HasAttachment bool               `json:"has_attachment"`
	AppliedAt     time.Time          `json:"applied_at"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// MoveStageResponse - result of a stage change
type MoveStageResponse struct {
	ID        kernel.RecordID `json:"id"`
	Stage     Stage           `json:"stage"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UploadAttachmentRequest - DTO for attaching a document
type UploadAttachmentRequest struct {
	RecordID    kernel.RecordID `json:"record_id" validate:"required"`
	FileData    []byte          `json:"-"` // File data, not serialized
	FileName    string          `json:"file_name" validate:"required"`
	FileSize    int64           `json:"file_size" validate:"required,max=10485760"` // 10MB max
	ContentType string          `json:"content_type" validate:"required"`
}

// UploadAttachmentResponse - result of attaching a document
type UploadAttachmentResponse struct {
	RecordID   kernel.RecordID      `json:"record_id"`
	Key        kernel.AttachmentKey `json:"key"`
	FileName   string               `json:"file_name"`
	FileSize   int64                `json:"file_size"`
	UploadedAt time.Time            `json:"uploaded_at"`
}

// Response type alias for paginated records
type PaginatedRecordsResponse = kernel.Paginated[RecordResponse]

// ToResponse converts a Record entity to its response DTO
func (r *Record) ToResponse() *RecordResponse {
	return &RecordResponse{
		ID:            r.ID,
		Company:       r.Company,
		Title:         r.Title,
		Stage:         r.Stage,
		SalaryMin:     r.SalaryMin,
		SalaryMax:     r.SalaryMax,
		Notes:         r.Notes,
		HasAttachment: r.HasAttachment(),
		AppliedAt:     r.AppliedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
