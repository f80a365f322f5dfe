package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/linearflow/linearflow/pkg/errx"
	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/pkg/logx"
	"github.com/linearflow/linearflow/tracker/record"
)

// TransitionFailed is the notification emitted after a rollback so the
// caller can surface user-visible feedback
type TransitionFailed struct {
	RecordID       kernel.RecordID `json:"record_id"`
	PreviousStage  record.Stage    `json:"previous_stage"`
	AttemptedStage record.Stage    `json:"attempted_stage"`
	Reason         string          `json:"reason"`
	At             time.Time       `json:"at"`
}

// NotifyFunc receives TransitionFailed notifications. It is called
// synchronously after the view has been rolled back.
type NotifyFunc func(TransitionFailed)

// MoveResult reports a resolved stage change
type MoveResult struct {
	Record record.Record `json:"record"`
	NoOp   bool          `json:"no_op"`
}

// Coordinator drives stage changes end-to-end with an optimistic-UI
// contract: the local view reflects the change before the store
// confirms it, and is rolled back to the snapshot if the store fails.
// Per record, moves are strictly serialized; a second move for a record
// whose first move has not resolved is rejected rather than queued, so
// a late rollback can never clobber a newer optimistic update.
type Coordinator struct {
	view    *View
	client  PersistenceClient
	timeout time.Duration
	notify  NotifyFunc

	mu       sync.Mutex
	inFlight map[kernel.RecordID]struct{}
}

// NewCoordinator creates a coordinator over a local view. timeout bounds
// every persistence call; notify may be nil.
func NewCoordinator(view *View, client PersistenceClient, timeout time.Duration, notify NotifyFunc) *Coordinator {
	return &Coordinator{
		view:     view,
		client:   client,
		timeout:  timeout,
		notify:   notify,
		inFlight: make(map[kernel.RecordID]struct{}),
	}
}

// View exposes the coordinator's local view for read-only consumers
func (c *Coordinator) View() *View {
	return c.view
}

// Refresh repopulates the local view from the store
func (c *Coordinator) Refresh(ctx context.Context, owner kernel.UserID) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	recs, err := c.client.ListRecords(ctx, owner)
	if err != nil {
		return ErrPersistenceUnavailable().WithCause(err)
	}

	c.view.Replace(recs)
	return nil
}

// MoveRecord performs a single user-initiated stage change.
//
// Validation failures (unknown stage, foreign owner, record absent from
// the view) return immediately: no view mutation, no store call. A
// requested stage equal to the current one succeeds as a no-op without
// touching the store or updated_at. Otherwise the view is updated
// optimistically, the store call is issued under the configured timeout,
// and on failure the view is restored to its pre-move snapshot and a
// TransitionFailed notification is emitted. Failed moves are never
// retried here; retry is a new explicit call.
func (c *Coordinator) MoveRecord(ctx context.Context, principal kernel.UserID, id kernel.RecordID, requested string) (*MoveResult, error) {
	if !c.acquire(id) {
		err := ErrTransitionInFlight().WithDetail("record_id", id.String())
		if rec, ok := c.view.Get(id); ok {
			err = err.WithDetail("current_stage", rec.Stage)
		}
		return nil, err
	}
	defer c.release(id)

	// Read the record only after the guard is held. While a move is in
	// flight the view shows its unconfirmed stage, so a read taken before
	// acquisition could turn a concurrent move into a bogus no-op.
	rec, ok := c.view.Get(id)
	if !ok {
		return nil, record.ErrRecordNotFound().WithDetail("record_id", id.String())
	}

	stage, err := ValidateTransition(&rec, principal, requested)
	if err != nil {
		return nil, err
	}

	if stage == rec.Stage {
		return &MoveResult{Record: rec, NoOp: true}, nil
	}

	prevStage := rec.Stage
	prevUpdatedAt := rec.UpdatedAt

	// Optimistic step: the caller's view shows the new stage before the
	// store confirms it.
	c.view.setStage(id, stage, nil)

	callCtx, cancel := c.bound(ctx)
	update, err := c.client.UpdateStage(callCtx, id, stage)
	cancel()

	if err != nil {
		c.view.setStage(id, prevStage, &prevUpdatedAt)
		c.emitFailure(id, prevStage, stage, err)

		return nil, c.asMoveError(err).
			WithDetail("record_id", id.String()).
			WithDetail("previous_stage", prevStage)
	}

	if update != nil {
		c.view.setStage(id, stage, &update.UpdatedAt)
	}

	moved, _ := c.view.Get(id)
	return &MoveResult{Record: moved}, nil
}

// acquire marks a record as having a move in flight
func (c *Coordinator) acquire(id kernel.RecordID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inFlight[id]; busy {
		return false
	}
	c.inFlight[id] = struct{}{}
	return true
}

func (c *Coordinator) release(id kernel.RecordID) {
	c.mu.Lock()
	delete(c.inFlight, id)
	c.mu.Unlock()
}

func (c *Coordinator) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Coordinator) emitFailure(id kernel.RecordID, prev, attempted record.Stage, cause error) {
	logx.Warnf("stage move failed for record %s (%s -> %s): %v", id, prev, attempted, cause)

	if c.notify == nil {
		return
	}
	c.notify(TransitionFailed{
		RecordID:       id,
		PreviousStage:  prev,
		AttemptedStage: attempted,
		Reason:         cause.Error(),
		At:             time.Now(),
	})
}

// asMoveError keeps typed store errors (ownership, not found)
// distinguishable and folds everything else, timeouts included, into
// the retryable persistence error.
func (c *Coordinator) asMoveError(err error) *errx.Error {
	if e, ok := err.(*errx.Error); ok {
		switch e.Type {
		case errx.TypeNotFound, errx.TypeAuthorization, errx.TypeValidation, errx.TypeBusiness, errx.TypeConflict:
			return e
		}
	}
	return ErrPersistenceUnavailable().WithCause(err)
}
