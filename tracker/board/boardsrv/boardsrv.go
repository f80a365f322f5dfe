package boardsrv

import (
	"context"
	"sync"
	"time"

	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/pipeline"
	"github.com/linearflow/linearflow/tracker/record"
)

// Column is one lane of the kanban board
type Column struct {
	Stage   record.Stage            `json:"stage"`
	Records []record.RecordResponse `json:"records"`
}

// BoardResponse is the rendered board plus any failure notifications
// accumulated since the last read
type BoardResponse struct {
	Columns  []Column                    `json:"columns"`
	Total    int                         `json:"total"`
	Failures []pipeline.TransitionFailed `json:"failures,omitempty"`
}

// maxPendingFailures bounds the per-session notification buffer
const maxPendingFailures = 32

// session is one user's live board: a local view, its coordinator, and
// the failure notifications not yet delivered to the UI
type session struct {
	coordinator *pipeline.Coordinator

	mu       sync.Mutex
	loaded   bool
	failures []pipeline.TransitionFailed
}

func (s *session) pushFailure(f pipeline.TransitionFailed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, f)
	if len(s.failures) > maxPendingFailures {
		s.failures = s.failures[len(s.failures)-maxPendingFailures:]
	}
}

func (s *session) drainFailures() []pipeline.TransitionFailed {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.failures
	s.failures = nil
	return out
}

// BoardService owns one board session per signed-in user. All stage
// moves on the board flow through the session's coordinator, so the
// optimistic-update protocol and per-record serialization apply to
// every caller surface alike.
type BoardService struct {
	client  pipeline.PersistenceClient
	timeout time.Duration

	mu       sync.Mutex
	sessions map[kernel.UserID]*session
}

// NewBoardService creates the board service. timeout bounds every
// persistence call made by the per-user coordinators.
func NewBoardService(client pipeline.PersistenceClient, timeout time.Duration) *BoardService {
	return &BoardService{
		client:   client,
		timeout:  timeout,
		sessions: make(map[kernel.UserID]*session),
	}
}

func (s *BoardService) session(owner kernel.UserID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[owner]; ok {
		return sess
	}

	sess := &session{}
	sess.coordinator = pipeline.NewCoordinator(
		pipeline.NewView(),
		s.client,
		s.timeout,
		sess.pushFailure,
	)
	s.sessions[owner] = sess
	return sess
}

// Board renders the owner's board, loading the view on first access
func (s *BoardService) Board(ctx context.Context, owner kernel.UserID) (*BoardResponse, error) {
	sess := s.session(owner)

	sess.mu.Lock()
	loaded := sess.loaded
	sess.mu.Unlock()

	if !loaded {
		if err := s.Refresh(ctx, owner); err != nil {
			return nil, err
		}
	}

	return s.render(sess), nil
}

// Refresh reloads the owner's view from the store
func (s *BoardService) Refresh(ctx context.Context, owner kernel.UserID) error {
	sess := s.session(owner)

	if err := sess.coordinator.Refresh(ctx, owner); err != nil {
		return err
	}

	sess.mu.Lock()
	sess.loaded = true
	sess.mu.Unlock()
	return nil
}

// Move drags one card to another column through the coordinator
func (s *BoardService) Move(ctx context.Context, owner kernel.UserID, id kernel.RecordID, requestedStage string) (*pipeline.MoveResult, error) {
	sess := s.session(owner)

	sess.mu.Lock()
	loaded := sess.loaded
	sess.mu.Unlock()

	if !loaded {
		if err := s.Refresh(ctx, owner); err != nil {
			return nil, err
		}
	}

	return sess.coordinator.MoveRecord(ctx, owner, id, requestedStage)
}

// Evict drops a user's session, e.g. after sign-out
func (s *BoardService) Evict(owner kernel.UserID) {
	s.mu.Lock()
	delete(s.sessions, owner)
	s.mu.Unlock()
}

func (s *BoardService) render(sess *session) *BoardResponse {
	snapshot := sess.coordinator.View().Snapshot()

	byStage := make(map[record.Stage][]record.RecordResponse, len(record.Stages))
	for _, rec := range snapshot {
		byStage[rec.Stage] = append(byStage[rec.Stage], *rec.ToResponse())
	}

	columns := make([]Column, 0, len(record.Stages))
	for _, stage := range record.Stages {
		recs := byStage[stage]
		if recs == nil {
			recs = []record.RecordResponse{}
		}
		columns = append(columns, Column{Stage: stage, Records: recs})
	}

	return &BoardResponse{
		Columns:  columns,
		Total:    len(snapshot),
		Failures: sess.drainFailures(),
	}
}
