package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iacforge/internal/domain/entity"
)

func TestJobRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo()

	job := entity.NewJob(entity.GenerationRequest{
		Requirements: "small vm",
		Provider:     entity.ProviderProxmox,
		Format:       entity.FormatTerraform,
	})
	require.NoError(t, repo.Create(ctx, job))

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.JobStatusPending, got.Status)

	require.NoError(t, repo.UpdateStatus(ctx, job.ID, entity.JobStatusRunning))
	got, err = repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusRunning, got.Status)

	running, err := repo.ListByStatus(ctx, entity.JobStatusRunning)
	require.NoError(t, err)
	assert.Len(t, running, 1)

	count, err := repo.CountByStatus(ctx, entity.JobStatusRunning)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, job.ID))
	got, err = repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJobRepoMissingJob(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo()

	got, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", entity.JobStatusFailed), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
}

func TestJobRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo()

	job := entity.NewJob(entity.GenerationRequest{Provider: entity.ProviderAWS})
	require.NoError(t, repo.Create(ctx, job))

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	got.Status = entity.JobStatusCanceled

	again, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPending, again.Status)
}

func TestResultRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepo()

	result := &entity.GenerationResult{
		GenerationID: "gen-1",
		Provider:     entity.ProviderGCP,
		IaCCode:      "resource \"google_compute_instance\" \"main\" {}",
	}
	require.NoError(t, repo.Save(ctx, "job-1", result))

	byJob, err := repo.GetByJobID(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, byJob)
	assert.Equal(t, "gen-1", byJob.GenerationID)

	byGen, err := repo.GetByGenerationID(ctx, "gen-1")
	require.NoError(t, err)
	require.NotNil(t, byGen)

	ids, err := repo.ListGenerationIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gen-1"}, ids)

	require.NoError(t, repo.DeleteByJobID(ctx, "job-1"))
	byJob, err = repo.GetByJobID(ctx, "job-1")
	require.NoError(t, err)
	assert.Nil(t, byJob)
}
