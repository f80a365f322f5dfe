package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linearflow/linearflow/pkg/kernel"
)

func TestParseStage(t *testing.T) {
	for _, s := range Stages {
		got, err := ParseStage(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, raw := range []string{"", "wishlist", "HIRED", "APPLIED "} {
		_, err := ParseStage(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestValidateSalaryRange(t *testing.T) {
	n := func(v int64) *int64 { return &v }

	tests := []struct {
		name    string
		min     *int64
		max     *int64
		wantErr bool
	}{
		{"both nil", nil, nil, false},
		{"only min", n(90000), nil, false},
		{"only max", nil, n(150000), false},
		{"valid range", n(90000), n(150000), false},
		{"equal bounds", n(120000), n(120000), false},
		{"inverted range", n(150000), n(90000), true},
		{"negative min", n(-1), nil, true},
		{"negative max", nil, n(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSalaryRange(tt.min, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTouchIsMonotonic(t *testing.T) {
	r := Record{UpdatedAt: time.Now().Add(time.Hour)}
	before := r.UpdatedAt

	r.Touch()
	assert.True(t, r.UpdatedAt.After(before))
}

func TestChangeStage(t *testing.T) {
	r := Record{Stage: StageWishlist}

	require.NoError(t, r.ChangeStage(StageRejected))
	assert.Equal(t, StageRejected, r.Stage)

	// Any stage can move to any other stage, terminal ones included
	require.NoError(t, r.ChangeStage(StageApplied))
	assert.Equal(t, StageApplied, r.Stage)

	assert.Error(t, r.ChangeStage(Stage("NONSENSE")))
	assert.Equal(t, StageApplied, r.Stage)
}

func TestRecordPredicates(t *testing.T) {
	r := Record{Owner: kernel.UserID("user-1"), Stage: StageOffer}

	assert.True(t, r.IsOwnedBy("user-1"))
	assert.False(t, r.IsOwnedBy("user-2"))
	assert.True(t, r.IsClosed())
	assert.False(t, r.IsArchived())
	assert.False(t, r.HasAttachment())

	r.Stage = StageArchived
	assert.True(t, r.IsArchived())
	assert.True(t, r.IsClosed())

	r.AttachmentKey = "attachments/rec-1/resume.pdf"
	assert.True(t, r.HasAttachment())
}
