package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/metrics"
	"iacforge/internal/infrastructure/store/filesystem"
)

// GenerationWorker drains pending jobs from the store and runs the full
// generation pipeline on each one.
type GenerationWorker struct {
	jobsRepo    repository.JobRepository
	resultsRepo repository.ResultRepository
	bundles     *filesystem.BundleRepository
	generator   *GenerationService

	logger *slog.Logger

	pollInterval time.Duration
	jobTimeout   time.Duration

	// control
	stop    chan struct{}
	stopped chan struct{}
}

func NewGenerationWorker(
	jr repository.JobRepository,
	rr repository.ResultRepository,
	bundles *filesystem.BundleRepository,
	generator *GenerationService,
	logger *slog.Logger,
) *GenerationWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationWorker{
		jobsRepo:     jr,
		resultsRepo:  rr,
		bundles:      bundles,
		generator:    generator,
		logger:       logger,
		pollInterval: 5 * time.Second,
		jobTimeout:   10 * time.Minute,
		stop:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

func (w *GenerationWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.stopped)
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()

		w.logger.Info("GenerationWorker started", "interval", w.pollInterval)

		if err := w.runOnce(ctx); err != nil {
			w.logger.Warn("initial runOnce failed", "err", err)
		}

		for {
			select {
			case <-ctx.Done():
				w.logger.Info("GenerationWorker context canceled")
				return
			case <-w.stop:
				w.logger.Info("GenerationWorker stopped by Stop()")
				return
			case <-ticker.C:
				if err := w.runOnce(ctx); err != nil {
					w.logger.Warn("runOnce failed", "err", err)
				}
			}
		}
	}()
}

func (w *GenerationWorker) Stop() {
	close(w.stop)
	<-w.stopped
	w.logger.Info("GenerationWorker fully stopped")
}

func (w *GenerationWorker) runOnce(ctx context.Context) error {
	jobs, err := w.jobsRepo.ListByStatus(ctx, entity.JobStatusPending)
	if err != nil {
		return fmt.Errorf("list pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	w.logger.Debug("found pending jobs", "count", len(jobs))

	for _, job := range jobs {
		if err := w.jobsRepo.UpdateStatus(ctx, job.ID, entity.JobStatusRunning); err != nil {
			w.logger.Warn("failed to set job running; skip", "job_id", job.ID, "err", err)
			continue
		}
		metrics.IncJobStatusChange(string(entity.JobStatusPending), string(entity.JobStatusRunning))
		w.trackActive(ctx)

		procCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
		func() {
			defer cancel()
			if err := w.processJob(procCtx, job); err != nil {
				w.logger.Error("processJob failed", "job_id", job.ID, "err", err)
			}
		}()
		w.trackActive(ctx)
	}

	return nil
}

// processJob runs one job end to end: generate, persist the result, write the
// bundle to disk, then record the final status.
func (w *GenerationWorker) processJob(ctx context.Context, job *entity.Job) error {
	startTime := time.Now()
	jobID := job.ID

	w.logger.Info("start processing job", "job_id", jobID, "provider", job.Request.Provider)

	resp := w.generator.GenerateIaC(ctx, job.Request)
	job.LLMCalls = resp.LLMCalls

	if !resp.Success {
		job.Error = resp.Error
		job.UpdateStatus(entity.JobStatusFailed)
		if err := w.jobsRepo.Update(ctx, job); err != nil {
			w.logger.Warn("failed to persist failed job", "job_id", jobID, "err", err)
		}
		metrics.IncJobStatusChange(string(entity.JobStatusRunning), string(entity.JobStatusFailed))
		return fmt.Errorf("generation failed: %s", resp.Error)
	}

	if err := w.resultsRepo.Save(ctx, jobID, resp.Result); err != nil {
		job.Error = err.Error()
		job.UpdateStatus(entity.JobStatusFailed)
		if updErr := w.jobsRepo.Update(ctx, job); updErr != nil {
			w.logger.Warn("failed to persist failed job", "job_id", jobID, "err", updErr)
		}
		metrics.IncJobStatusChange(string(entity.JobStatusRunning), string(entity.JobStatusFailed))
		return fmt.Errorf("save result: %w", err)
	}

	if w.bundles != nil {
		if err := w.bundles.SaveBundle(ctx, resp.Result); err != nil {
			// The result is already persisted; a bundle write failure only
			// loses the on-disk copy.
			w.logger.Error("save bundle failed", "job_id", jobID, "err", err)
		}
	}

	job.UpdateStatus(entity.JobStatusCompleted)
	if err := w.jobsRepo.Update(ctx, job); err != nil {
		w.logger.Warn("failed to persist completed job", "job_id", jobID, "err", err)
	}
	metrics.IncJobStatusChange(string(entity.JobStatusRunning), string(entity.JobStatusCompleted))

	w.logger.Info("job processed",
		"job_id", jobID, "generation_id", resp.Result.GenerationID,
		"llm_calls", resp.LLMCalls, "duration", time.Since(startTime))
	return nil
}

func (w *GenerationWorker) trackActive(ctx context.Context) {
	count, err := w.jobsRepo.CountByStatus(ctx, entity.JobStatusRunning)
	if err != nil {
		return
	}
	metrics.SetActiveJobs(count)
}
