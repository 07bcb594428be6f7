package ports

import (
	"context"

	"shipping-price-pipeline/internal/core/domain"
)

// TrainingRunRepository persists one row per pipeline invocation.
type TrainingRunRepository interface {
	Create(ctx context.Context, run *domain.TrainingRun) error
	Update(ctx context.Context, run *domain.TrainingRun) error
}
