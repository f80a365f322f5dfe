package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linearflow/linearflow/tracker/record"
)

func recAt(stage record.Stage, appliedAt time.Time) record.Record {
	return record.Record{Stage: stage, AppliedAt: appliedAt}
}

func rec(stage record.Stage) record.Record {
	return recAt(stage, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
}

func TestRejectionRate(t *testing.T) {
	tests := []struct {
		name    string
		records []record.Record
		want    int
	}{
		{"no records", nil, 0},
		{"no decided applications", []record.Record{
			rec(record.StageWishlist),
			rec(record.StageApplied),
			rec(record.StageTechnicalInterview),
		}, 0},
		{"all rejected", []record.Record{
			rec(record.StageRejected),
			rec(record.StageRejected),
		}, 100},
		{"one of three decided rejected", []record.Record{
			rec(record.StageRejected),
			rec(record.StageOffer),
			rec(record.StageOffer),
			rec(record.StageApplied), // undecided, excluded from denominator
		}, 33},
		{"two of three decided rejected rounds up", []record.Record{
			rec(record.StageRejected),
			rec(record.StageRejected),
			rec(record.StageOffer),
		}, 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RejectionRate(tt.records))
		})
	}
}

func TestStatusDistribution(t *testing.T) {
	records := []record.Record{
		rec(record.StageRejected),
		rec(record.StageApplied),
		rec(record.StageApplied),
		rec(record.StageWishlist),
	}

	dist := StatusDistribution(records)

	// Only stages present, in pipeline order
	require.Len(t, dist, 3)
	assert.Equal(t, StageCount{Stage: record.StageWishlist, Count: 1}, dist[0])
	assert.Equal(t, StageCount{Stage: record.StageApplied, Count: 2}, dist[1])
	assert.Equal(t, StageCount{Stage: record.StageRejected, Count: 1}, dist[2])

	total := 0
	for _, d := range dist {
		total += d.Count
	}
	assert.Equal(t, len(records), total)
}

func TestStatusDistributionEmpty(t *testing.T) {
	assert.Empty(t, StatusDistribution(nil))
}

func TestMonthlyApplicationCounts(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	records := []record.Record{
		recAt(record.StageApplied, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)),
		recAt(record.StageOffer, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)),
		recAt(record.StageRejected, time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)),
		recAt(record.StageApplied, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)),  // outside window
		recAt(record.StageApplied, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)), // in the future
	}

	got := MonthlyApplicationCountsAt(records, 6, now)

	require.Len(t, got, 2)
	assert.Equal(t, MonthCount{Month: "Jan", Count: 2}, got[0])
	assert.Equal(t, MonthCount{Month: "Feb", Count: 1}, got[1])
}

func TestMonthlyApplicationCountsZeroWindow(t *testing.T) {
	records := []record.Record{rec(record.StageApplied)}
	assert.Empty(t, MonthlyApplicationCountsAt(records, 0, time.Now()))
}

func TestCountByStages(t *testing.T) {
	records := []record.Record{
		rec(record.StageApplied),
		rec(record.StageRecruiterScreen),
		rec(record.StageTechnicalInterview),
		rec(record.StageFinalRound),
		rec(record.StageArchived),
	}

	interviewing := CountByStages(records,
		record.StageRecruiterScreen,
		record.StageTechnicalInterview,
		record.StageFinalRound,
	)
	assert.Equal(t, 3, interviewing)
	assert.Equal(t, 0, CountByStages(records))
	assert.Equal(t, 5, CountTotal(records))
}
