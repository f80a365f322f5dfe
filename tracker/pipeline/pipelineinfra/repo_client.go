package pipelineinfra

import (
	"context"

	"github.com/linearflow/linearflow/pkg/kernel"
	"github.com/linearflow/linearflow/tracker/pipeline"
	"github.com/linearflow/linearflow/tracker/record"
)

// RepositoryClient adapts record.Repository to the coordinator's
// PersistenceClient port. Typed repository errors pass through so
// ownership and not-found outcomes stay distinguishable upstream.
type RepositoryClient struct {
	repo record.Repository
}

// NewRepositoryClient creates a repository-backed persistence client
func NewRepositoryClient(repo record.Repository) *RepositoryClient {
	return &RepositoryClient{repo: repo}
}

func (c *RepositoryClient) UpdateStage(ctx context.Context, id kernel.RecordID, stage record.Stage) (*pipeline.StageUpdate, error) {
	updatedAt, err := c.repo.UpdateStage(ctx, id, stage)
	if err != nil {
		return nil, err
	}
	return &pipeline.StageUpdate{UpdatedAt: updatedAt}, nil
}

func (c *RepositoryClient) ListRecords(ctx context.Context, owner kernel.UserID) ([]record.Record, error) {
	return c.repo.ListAllByOwner(ctx, owner)
}

func (c *RepositoryClient) CreateRecord(ctx context.Context, rec *record.Record) error {
	return c.repo.Create(ctx, rec)
}

func (c *RepositoryClient) DeleteRecord(ctx context.Context, id kernel.RecordID) error {
	return c.repo.Delete(ctx, id)
}
