package pipeline

import (
	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/record"
)

// ValidateTransition validates and normalizes a requested stage change
// for one record. It owns stage-name validation and the ownership check;
// it holds no state. Any stage may move to any stage, so no further
// business rule applies once the value and the owner check out.
func ValidateTransition(rec *record.Record, principal kernel.UserID, requested string) (record.Stage, error) {
	stage, err := record.ParseStage(requested)
	if err != nil {
		return "", err
	}

	if !rec.IsOwnedBy(principal) {
		return "", record.ErrNotOwner().
			WithDetail("record_id", rec.ID.String())
	}

	return stage, nil
}
