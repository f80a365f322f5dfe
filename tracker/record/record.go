package record

import (
	"time"

	"github.com/linearflow/linearflow/pkg/kernel"
)

// Stage represents one phase of a job application's pipeline
type Stage string

const (
	StageWishlist           Stage = "WISHLIST"            // Saved, not yet applied
	StageApplied            Stage = "APPLIED"             // Application sent
	StageRecruiterScreen    Stage = "RECRUITER_SCREEN"    // Initial recruiter call
	StageTechnicalInterview Stage = "TECHNICAL_INTERVIEW" // Technical rounds
	StageFinalRound         Stage = "FINAL_ROUND"         // Onsite / final loop
	StageOffer              Stage = "OFFER"               // Offer received
	StageRejected           Stage = "REJECTED"            // Rejected or ghosted
	StageArchived           Stage = "ARCHIVED"            // No longer tracked
)

// Stages lists every stage in pipeline order. Aggregations that need a
// deterministic order iterate this slice.
var Stages = []Stage{
	StageWishlist,
	StageApplied,
	StageRecruiterScreen,
	StageTechnicalInterview,
	StageFinalRound,
	StageOffer,
	StageRejected,
	StageArchived,
}

var stageSet = func() map[Stage]struct{} {
	m := make(map[Stage]struct{}, len(Stages))
	for _, s := range Stages {
		m[s] = struct{}{}
	}
	return m
}()

// IsValid checks if the stage is one of the enumerated values
func (s Stage) IsValid() bool {
	_, ok := stageSet[s]
	return ok
}

// ParseStage normalizes a raw stage value, rejecting anything outside
// the enumeration. Unknown values never reach storage.
func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if !s.IsValid() {
		return "", ErrInvalidStage().WithDetail("stage", raw)
	}
	return s, nil
}

type Record struct {
	ID            kernel.RecordID      `db:"id" json:"id"`
	Owner         kernel.UserID        `db:"owner_id" json:"owner_id"`
	Company       kernel.CompanyName   `db:"company" json:"company"`
	Title         kernel.RoleTitle     `db:"title" json:"title"`
	Stage         Stage                `db:"stage" json:"stage"`
	SalaryMin     *int64               `db:"salary_min" json:"salary_min,omitempty"`
	SalaryMax     *int64               `db:"salary_max" json:"salary_max,omitempty"`
	Notes         string               `db:"notes" json:"notes,omitempty"`
	AttachmentKey kernel.AttachmentKey `db:"attachment_key" json:"attachment_key,omitempty"`
	AppliedAt     time.Time            `db:"applied_at" json:"applied_at"`
	CreatedAt     time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsOwnedBy checks if the acting principal owns this record
func (r *Record) IsOwnedBy(principal kernel.UserID) bool {
	return r.Owner == principal
}

// IsArchived checks if the record left the active pipeline
func (r *Record) IsArchived() bool {
	return r.Stage == StageArchived
}

// IsClosed checks if the record reached a terminal stage
func (r *Record) IsClosed() bool {
	return r.Stage == StageOffer || r.Stage == StageRejected || r.IsArchived()
}

// HasAttachment checks if a document is stored for this record
func (r *Record) HasAttachment() bool {
	return r.AttachmentKey != ""
}

// ValidateSalaryRange enforces min <= max when both bounds are present
func ValidateSalaryRange(min, max *int64) error {
	if min != nil && *min < 0 {
		return ErrInvalidSalaryRange().WithDetail("salary_min", *min)
	}
	if max != nil && *max < 0 {
		return ErrInvalidSalaryRange().WithDetail("salary_max", *max)
	}
	if min != nil && max != nil && *min > *max {
		return ErrInvalidSalaryRange().
			WithDetail("salary_min", *min).
			WithDetail("salary_max", *max)
	}
	return nil
}

// ChangeStage moves the record to a new stage. Every stage can move to
// every other stage, mirroring free drag on the board; only the stage
// value itself is validated.
func (r *Record) ChangeStage(newStage Stage) error {
	if !newStage.IsValid() {
		return ErrInvalidStage().WithDetail("stage", string(newStage))
	}

	r.Stage = newStage
	r.UpdatedAt = time.Now()
	return nil
}

// Touch refreshes the mutation timestamp, keeping it monotonic
func (r *Record) Touch() {
	now := time.Now()
	if !now.After(r.UpdatedAt) {
		now = r.UpdatedAt.Add(time.Nanosecond)
	}
	r.UpdatedAt = now
}
