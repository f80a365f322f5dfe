// Package metrics folds collections of records into dashboard figures.
// Every function is pure: input slices are never mutated, empty input
// yields zero-valued results, and output order is deterministic.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/linearflow/linearflow/tracker/record"
)

// StageCount is one entry of a stage distribution
type StageCount struct {
	Stage record.Stage `json:"stage"`
	Count int          `json:"count"`
}

// MonthCount is one entry of a monthly application series
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// CountTotal returns the number of records
func CountTotal(records []record.Record) int {
	return len(records)
}

// CountByStages counts records whose stage is in the given set
func CountByStages(records []record.Record, stages ...record.Stage) int {
	set := make(map[record.Stage]struct{}, len(stages))
	for _, s := range stages {
		set[s] = struct{}{}
	}

	n := 0
	for _, r := range records {
		if _, ok := set[r.Stage]; ok {
			n++
		}
	}
	return n
}

// RejectionRate returns the rejected share of decided applications as a
// rounded percentage. With no decided applications the rate is 0, never
// a division by zero.
func RejectionRate(records []record.Record) int {
	rejected := CountByStages(records, record.StageRejected)
	decided := rejected + CountByStages(records, record.StageOffer)
	if decided == 0 {
		return 0
	}
	return int(math.Round(100 * float64(rejected) / float64(decided)))
}

// StatusDistribution returns one (stage, count) entry per stage present
// in the input, in pipeline enumeration order. Counts always sum to
// len(records).
func StatusDistribution(records []record.Record) []StageCount {
	counts := make(map[record.Stage]int, len(record.Stages))
	for _, r := range records {
		counts[r.Stage]++
	}

	out := make([]StageCount, 0, len(counts))
	for _, s := range record.Stages {
		if n, ok := counts[s]; ok {
			out = append(out, StageCount{Stage: s, Count: n})
		}
	}
	return out
}

// MonthlyApplicationCounts groups applications of the trailing
// windowMonths months by calendar month, labelled with the short month
// name, in chronological order.
func MonthlyApplicationCounts(records []record.Record, windowMonths int) []MonthCount {
	return MonthlyApplicationCountsAt(records, windowMonths, time.Now())
}

// MonthlyApplicationCountsAt is MonthlyApplicationCounts with an
// explicit reference time
func MonthlyApplicationCountsAt(records []record.Record, windowMonths int, now time.Time) []MonthCount {
	if windowMonths <= 0 {
		return []MonthCount{}
	}
	cutoff := now.AddDate(0, -windowMonths, 0)

	inWindow := make([]record.Record, 0, len(records))
	for _, r := range records {
		if r.AppliedAt.After(cutoff) && !r.AppliedAt.After(now) {
			inWindow = append(inWindow, r)
		}
	}
	sort.Slice(inWindow, func(i, j int) bool {
		return inWindow[i].AppliedAt.Before(inWindow[j].AppliedAt)
	})

	type monthKey struct {
		year  int
		month time.Month
	}
	counts := make(map[monthKey]int)
	order := make([]monthKey, 0)

	for _, r := range inWindow {
		k := monthKey{year: r.AppliedAt.Year(), month: r.AppliedAt.Month()}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]MonthCount, 0, len(order))
	for _, k := range order {
		label := time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan")
		out = append(out, MonthCount{Month: label, Count: counts[k]})
	}
	return out
}
