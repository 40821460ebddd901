package memory

import (
	"context"
	"sync"

	"iacforge/internal/domain/entity"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/metrics"
)

// ResultRepo keeps finished results in memory, keyed by job.
type ResultRepo struct {
	mu      sync.RWMutex
	results map[string]entity.GenerationResult
}

func NewResultRepo() *ResultRepo {
	return &ResultRepo{results: make(map[string]entity.GenerationResult)}
}

var _ repository.ResultRepository = (*ResultRepo)(nil)

func (r *ResultRepo) Save(ctx context.Context, jobID string, result *entity.GenerationResult) error {
	metrics.IncStoreOp("put")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[jobID] = *result
	return nil
}

func (r *ResultRepo) GetByJobID(ctx context.Context, jobID string) (*entity.GenerationResult, error) {
	metrics.IncStoreOp("get")

	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[jobID]
	if !ok {
		return nil, nil
	}
	return &result, nil
}

func (r *ResultRepo) GetByGenerationID(ctx context.Context, generationID string) (*entity.GenerationResult, error) {
	metrics.IncStoreOp("get")

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, result := range r.results {
		if result.GenerationID == generationID {
			res := result
			return &res, nil
		}
	}
	return nil, nil
}

func (r *ResultRepo) ListGenerationIDs(ctx context.Context) ([]string, error) {
	metrics.IncStoreOp("list")

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.results))
	for _, result := range r.results {
		ids = append(ids, result.GenerationID)
	}
	return ids, nil
}

func (r *ResultRepo) DeleteByJobID(ctx context.Context, jobID string) error {
	metrics.IncStoreOp("delete")

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.results, jobID)
	return nil
}
