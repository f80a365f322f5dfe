package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linearflow/linearflow/pkg/errx"
	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/record"
)

// stubClient is a scriptable PersistenceClient for coordinator tests
type stubClient struct {
	mu          sync.Mutex
	updateCalls int
	updateFn    func(ctx context.Context, id kernel.RecordID, stage record.Stage) (*StageUpdate, error)
	listFn      func(ctx context.Context, owner kernel.UserID) ([]record.Record, error)
}

func (s *stubClient) UpdateStage(ctx context.Context, id kernel.RecordID, stage record.Stage) (*StageUpdate, error) {
	s.mu.Lock()
	s.updateCalls++
	s.mu.Unlock()

	if s.updateFn != nil {
		return s.updateFn(ctx, id, stage)
	}
	return &StageUpdate{UpdatedAt: time.Now()}, nil
}

func (s *stubClient) ListRecords(ctx context.Context, owner kernel.UserID) ([]record.Record, error) {
	if s.listFn != nil {
		return s.listFn(ctx, owner)
	}
	return nil, nil
}

func (s *stubClient) CreateRecord(ctx context.Context, rec *record.Record) error { return nil }
func (s *stubClient) DeleteRecord(ctx context.Context, id kernel.RecordID) error { return nil }

func (s *stubClient) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCalls
}

const testOwner = kernel.UserID("user-1")

func seedRecord(id string, stage record.Stage) record.Record {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return record.Record{
		ID:        kernel.RecordID(id),
		Owner:     testOwner,
		Company:   "Initech",
		Title:     "Backend Engineer",
		Stage:     stage,
		AppliedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestCoordinator(client PersistenceClient, notify NotifyFunc, recs ...record.Record) *Coordinator {
	view := NewView()
	view.Replace(recs)
	return NewCoordinator(view, client, time.Second, notify)
}

func TestMoveRecordPersistsAndConfirmsTimestamp(t *testing.T) {
	confirmed := time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)
	client := &stubClient{
		updateFn: func(ctx context.Context, id kernel.RecordID, stage record.Stage) (*StageUpdate, error) {
			assert.Equal(t, record.StageApplied, stage)
			return &StageUpdate{UpdatedAt: confirmed}, nil
		},
	}
	coord := newTestCoordinator(client, nil, seedRecord("rec-1", record.StageWishlist))

	result, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "APPLIED")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.NoOp)
	assert.Equal(t, record.StageApplied, result.Record.Stage)
	assert.Equal(t, confirmed, result.Record.UpdatedAt)

	cached, ok := coord.View().Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, record.StageApplied, cached.Stage)
	assert.Equal(t, confirmed, cached.UpdatedAt)
	assert.Equal(t, 1, client.calls())
}

func TestMoveRecordRollsBackOnPersistenceFailure(t *testing.T) {
	client := &stubClient{
		updateFn: func(ctx context.Context, id kernel.RecordID, stage record.Stage) (*StageUpdate, error) {
			return nil, errors.New("connection reset")
		},
	}

	var notified []TransitionFailed
	notify := func(f TransitionFailed) { notified = append(notified, f) }

	rec := seedRecord("rec-1", record.StageRecruiterScreen)
	coord := newTestCoordinator(client, notify, rec)

	_, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "OFFER")
	require.Error(t, err)
	assert.True(t, errx.IsType(err, errx.TypeExternal))

	// View restored to the pre-move snapshot, timestamp included
	cached, ok := coord.View().Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, record.StageRecruiterScreen, cached.Stage)
	assert.Equal(t, rec.UpdatedAt, cached.UpdatedAt)

	// Exactly one failure notification carrying the previous stage
	require.Len(t, notified, 1)
	assert.Equal(t, kernel.RecordID("rec-1"), notified[0].RecordID)
	assert.Equal(t, record.StageRecruiterScreen, notified[0].PreviousStage)
	assert.Equal(t, record.StageOffer, notified[0].AttemptedStage)
	assert.NotEmpty(t, notified[0].Reason)

	// No silent retry
	assert.Equal(t, 1, client.calls())
}

func TestMoveRecordRejectsUnknownStageWithoutStoreCall(t *testing.T) {
	client := &stubClient{}
	coord := newTestCoordinator(client, nil, seedRecord("rec-1", record.StageWishlist))

	_, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "HIRED")
	require.Error(t, err)
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	cached, _ := coord.View().Get("rec-1")
	assert.Equal(t, record.StageWishlist, cached.Stage)
	assert.Equal(t, 0, client.calls())
}

func TestMoveRecordRejectsForeignOwnerWithoutStoreCall(t *testing.T) {
	client := &stubClient{}
	coord := newTestCoordinator(client, nil, seedRecord("rec-1", record.StageWishlist))

	_, err := coord.MoveRecord(context.Background(), kernel.UserID("someone-else"), "rec-1", "APPLIED")
	require.Error(t, err)
	assert.Equal(t, 0, client.calls())
}

func TestMoveRecordMissingFromView(t *testing.T) {
	client := &stubClient{}
	coord := newTestCoordinator(client, nil)

	_, err := coord.MoveRecord(context.Background(), testOwner, "ghost", "APPLIED")
	require.Error(t, err)
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
	assert.Equal(t, 0, client.calls())
}

func TestMoveRecordSameStageIsNoOp(t *testing.T) {
	client := &stubClient{}
	rec := seedRecord("rec-1", record.StageApplied)
	coord := newTestCoordinator(client, nil, rec)

	result, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "APPLIED")
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Equal(t, rec.UpdatedAt, result.Record.UpdatedAt)
	assert.Equal(t, 0, client.calls())
}

func TestMoveRecordSerializesPerRecord(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	client := &stubClient{
		updateFn: func(ctx context.Context, id kernel.RecordID, stage record.Stage) (*StageUpdate, error) {
			close(entered)
			<-release
			return &StageUpdate{UpdatedAt: time.Now()}, nil
		},
	}
	coord := newTestCoordinator(client, nil, seedRecord("rec-1", record.StageWishlist))

	firstDone := make(chan error, 1)
	go func() {
		_, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "APPLIED")
		firstDone <- err
	}()

	<-entered // first move is now blocked inside the store call

	_, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "OFFER")
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, CodeTransitionInFlight))

	close(release)
	require.NoError(t, <-firstDone)

	cached, _ := coord.View().Get("rec-1")
	assert.Equal(t, record.StageApplied, cached.Stage)
}

func TestMoveRecordRejectsOptimisticStageWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	client := &stubClient{
		updateFn: func(ctx context.Context, id kernel.RecordID, stage record.Stage) (*StageUpdate, error) {
			close(entered)
			<-release
			return nil, errors.New("store down")
		},
	}
	coord := newTestCoordinator(client, nil, seedRecord("rec-1", record.StageWishlist))

	firstDone := make(chan error, 1)
	go func() {
		_, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "OFFER")
		firstDone <- err
	}()

	<-entered // first move is blocked; the view shows unconfirmed OFFER

	// Requesting the in-flight target stage must be rejected as busy,
	// never reported as a no-op success the rollback would contradict.
	result, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "OFFER")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errx.IsCode(err, CodeTransitionInFlight))

	close(release)
	require.Error(t, <-firstDone)

	cached, _ := coord.View().Get("rec-1")
	assert.Equal(t, record.StageWishlist, cached.Stage)
	assert.Equal(t, 1, client.calls())
}

func TestMoveRecordTimeoutRollsBack(t *testing.T) {
	client := &stubClient{
		updateFn: func(ctx context.Context, id kernel.RecordID, stage record.Stage) (*StageUpdate, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	view := NewView()
	view.Replace([]record.Record{seedRecord("rec-1", record.StageWishlist)})
	coord := NewCoordinator(view, client, 10*time.Millisecond, nil)

	_, err := coord.MoveRecord(context.Background(), testOwner, "rec-1", "APPLIED")
	require.Error(t, err)
	assert.True(t, errx.IsType(err, errx.TypeExternal))

	cached, _ := coord.View().Get("rec-1")
	assert.Equal(t, record.StageWishlist, cached.Stage)
}

func TestRefreshReplacesView(t *testing.T) {
	client := &stubClient{
		listFn: func(ctx context.Context, owner kernel.UserID) ([]record.Record, error) {
			return []record.Record{
				seedRecord("rec-1", record.StageApplied),
				seedRecord("rec-2", record.StageOffer),
			}, nil
		},
	}
	coord := newTestCoordinator(client, nil, seedRecord("stale", record.StageWishlist))

	require.NoError(t, coord.Refresh(context.Background(), testOwner))
	assert.Equal(t, 2, coord.View().Len())
	_, ok := coord.View().Get("stale")
	assert.False(t, ok)
}

func TestRefreshFailureKeepsView(t *testing.T) {
	client := &stubClient{
		listFn: func(ctx context.Context, owner kernel.UserID) ([]record.Record, error) {
			return nil, errors.New("store down")
		},
	}
	coord := newTestCoordinator(client, nil, seedRecord("rec-1", record.StageWishlist))

	err := coord.Refresh(context.Background(), testOwner)
	require.Error(t, err)
	assert.Equal(t, 1, coord.View().Len())
}
