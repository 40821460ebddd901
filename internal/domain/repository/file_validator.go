package repository

import (
	"context"

	"iacforge/internal/domain/entity"
)

// IaCValidator validates generated IaC text. Implementations convert every
// expected degraded condition (missing tool, timeout) into issues rather than
// errors; only unexpected internal failures surface in the result itself.
type IaCValidator interface {
	Validate(ctx context.Context, code string, format entity.Format, provider entity.Provider) entity.ValidationResult
}
