package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/metrics"
)

// ErrNotFound is returned for writes against missing jobs. Reads return nil
// without error, matching the mongo repository's contract.
var ErrNotFound = errors.New("not found")

// JobRepo is the mutex-guarded in-memory implementation used when no MongoDB
// address is configured, and in tests.
type JobRepo struct {
	mu   sync.RWMutex
	jobs map[string]entity.Job
}

func NewJobRepo() *JobRepo {
	return &JobRepo{jobs: make(map[string]entity.Job)}
}

var _ repository.JobRepository = (*JobRepo)(nil)

func (r *JobRepo) Create(ctx context.Context, job *entity.Job) error {
	metrics.IncJobsCreated()
	metrics.IncStoreOp("put")

	r.mu.Lock()
	defer r.mu.Unlock()

	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	r.jobs[job.ID] = *job
	return nil
}

func (r *JobRepo) GetByID(ctx context.Context, id string) (*entity.Job, error) {
	metrics.IncStoreOp("get")

	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (r *JobRepo) List(ctx context.Context) ([]*entity.Job, error) {
	metrics.IncStoreOp("list")

	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*entity.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		j := job
		jobs = append(jobs, &j)
	}
	return jobs, nil
}

func (r *JobRepo) ListByStatus(ctx context.Context, status entity.JobStatus) ([]*entity.Job, error) {
	metrics.IncStoreOp("list")

	r.mu.RLock()
	defer r.mu.RUnlock()

	var jobs []*entity.Job
	for _, job := range r.jobs {
		if job.Status == status {
			j := job
			jobs = append(jobs, &j)
		}
	}
	return jobs, nil
}

func (r *JobRepo) Update(ctx context.Context, job *entity.Job) error {
	metrics.IncStoreOp("put")

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	job.UpdatedAt = time.Now()
	r.jobs[job.ID] = *job
	return nil
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status entity.JobStatus) error {
	metrics.IncStoreOp("put")

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	r.jobs[id] = job
	return nil
}

func (r *JobRepo) Delete(ctx context.Context, id string) error {
	metrics.IncStoreOp("delete")

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

func (r *JobRepo) CountByStatus(ctx context.Context, status entity.JobStatus) (int, error) {
	metrics.IncStoreOp("count")

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, job := range r.jobs {
		if job.Status == status {
			count++
		}
	}
	return count, nil
}
