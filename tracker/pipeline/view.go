package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/record"
)

// View is the in-memory cache of one owner's records that the UI reads
// from. Only the coordinator and Replace (a refresh fetch) mutate it.
// Readers always get copies, so aggregations never observe a write in
// progress.
type View struct {
	mu      sync.RWMutex
	records map[kernel.RecordID]record.Record
}

// NewView creates an empty local view
func NewView() *View {
	return &View{
		records: make(map[kernel.RecordID]record.Record),
	}
}

// Replace swaps the entire view contents with a fresh list fetch
func (v *View) Replace(recs []record.Record) {
	next := make(map[kernel.RecordID]record.Record, len(recs))
	for _, r := range recs {
		next[r.ID] = r
	}

	v.mu.Lock()
	v.records = next
	v.mu.Unlock()
}

// Get returns a copy of the record, if present
func (v *View) Get(id kernel.RecordID) (record.Record, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	r, ok := v.records[id]
	return r, ok
}

// Put inserts or overwrites a single record
func (v *View) Put(rec record.Record) {
	v.mu.Lock()
	v.records[rec.ID] = rec
	v.mu.Unlock()
}

// Evict removes a record from the view
func (v *View) Evict(id kernel.RecordID) {
	v.mu.Lock()
	delete(v.records, id)
	v.mu.Unlock()
}

// Len returns the number of cached records
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records)
}

// Snapshot returns an immutable copy of all records, ordered newest
// first with ID as tie-breaker so output is deterministic
func (v *View) Snapshot() []record.Record {
	v.mu.RLock()
	out := make([]record.Record, 0, len(v.records))
	for _, r := range v.records {
		out = append(out, r)
	}
	v.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// setStage applies a stage value in place, optionally refreshing the
// mutation timestamp from a store confirmation
func (v *View) setStage(id kernel.RecordID, stage record.Stage, updatedAt *time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	r, ok := v.records[id]
	if !ok {
		return
	}
	r.Stage = stage
	if updatedAt != nil {
		r.UpdatedAt = *updatedAt
	}
	v.records[id] = r
}
