package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/store/filesystem"
)

type JobUsecase interface {
	CreateJob(ctx context.Context, req entity.GenerationRequest) (*entity.Job, error)
	GetJob(ctx context.Context, id string) (*entity.Job, error)
	ListJobs(ctx context.Context) ([]*entity.Job, error)
	GetResult(ctx context.Context, jobID string) (*entity.GenerationResult, error)
	UpdateStatus(ctx context.Context, jobID string, status entity.JobStatus) error
	CancelJob(ctx context.Context, jobID string) error
	DeleteJob(ctx context.Context, jobID string) error
}

var _ JobUsecase = (*JobService)(nil)

type JobService struct {
	jobsRepo    repository.JobRepository
	resultsRepo repository.ResultRepository
	bundles     *filesystem.BundleRepository
	logger      *slog.Logger
}

func NewJobService(
	jr repository.JobRepository,
	rr repository.ResultRepository,
	bundles *filesystem.BundleRepository,
	logger *slog.Logger,
) *JobService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		jobsRepo:    jr,
		resultsRepo: rr,
		bundles:     bundles,
		logger:      logger,
	}
}

func (u *JobService) CreateJob(ctx context.Context, req entity.GenerationRequest) (*entity.Job, error) {
	if req.Requirements == "" {
		return nil, fmt.Errorf("requirements must not be empty")
	}
	if !req.Provider.Valid() {
		return nil, fmt.Errorf("unknown provider %q", req.Provider)
	}

	job := entity.NewJob(req)
	if err := u.jobsRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	u.logger.Info("job created", "job_id", job.ID, "provider", req.Provider)
	return job, nil
}

func (u *JobService) GetJob(ctx context.Context, id string) (*entity.Job, error) {
	job, err := u.jobsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, jobNotFoundError(id)
	}
	return job, nil
}

func (u *JobService) ListJobs(ctx context.Context) ([]*entity.Job, error) {
	return u.jobsRepo.List(ctx)
}

func (u *JobService) GetResult(ctx context.Context, jobID string) (*entity.GenerationResult, error) {
	result, err := u.resultsRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("no result for job %s", jobID)
	}
	return result, nil
}

func (u *JobService) UpdateStatus(ctx context.Context, jobID string, status entity.JobStatus) error {
	return u.jobsRepo.UpdateStatus(ctx, jobID, status)
}

// CancelJob marks a job canceled so the worker never picks it up. A job that
// already reached a terminal status stays as it is.
func (u *JobService) CancelJob(ctx context.Context, jobID string) error {
	job, err := u.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Terminal() {
		return fmt.Errorf("job %s already finished with status %s", jobID, job.Status)
	}
	return u.jobsRepo.UpdateStatus(ctx, jobID, entity.JobStatusCanceled)
}

// DeleteJob removes the job together with its stored result and on-disk
// bundle, if any.
func (u *JobService) DeleteJob(ctx context.Context, jobID string) error {
	result, err := u.resultsRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load result: %w", err)
	}
	if result != nil && u.bundles != nil {
		if err := u.bundles.DeleteBundle(ctx, result.GenerationID); err != nil {
			u.logger.Warn("failed to delete bundle", "job_id", jobID, "err", err)
		}
	}
	if err := u.resultsRepo.DeleteByJobID(ctx, jobID); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if err := u.jobsRepo.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

func jobNotFoundError(id string) error {
	return fmt.Errorf("job %s not found", id)
}
