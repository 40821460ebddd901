package repository

import (
	"context"

	"iacforge/internal/domain/entity"
)

// ResultRepository stores finished generation results keyed by job.
type ResultRepository interface {
	Save(ctx context.Context, jobID string, result *entity.GenerationResult) error
	GetByJobID(ctx context.Context, jobID string) (*entity.GenerationResult, error)
	GetByGenerationID(ctx context.Context, generationID string) (*entity.GenerationResult, error)
	ListGenerationIDs(ctx context.Context) ([]string, error)
	DeleteByJobID(ctx context.Context, jobID string) error
}
