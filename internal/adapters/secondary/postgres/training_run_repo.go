package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shipping-price-pipeline/internal/core/domain"
	ports "shipping-price-pipeline/internal/core/ports/output"
)

const trainingRunColumns = `
	id, started_at, finished_at, status, failed_stage, error_message,
	artifact_dir, trained_model_score, deployed_model_score,
	is_model_accepted, score_difference, model_key
`

type trainingRunRepo struct {
	pool *pgxpool.Pool
}

// NewTrainingRunRepository creates a new TrainingRunRepository
func NewTrainingRunRepository(pool *pgxpool.Pool) ports.TrainingRunRepository {
	return &trainingRunRepo{pool: pool}
}

func (r *trainingRunRepo) Create(ctx context.Context, run *domain.TrainingRun) error {
	query := `
		INSERT INTO training_run (` + trainingRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt,
		string(run.Status), string(run.FailedStage), run.ErrorMessage,
		run.ArtifactDir, run.TrainedModelScore, run.DeployedModelScore,
		run.IsModelAccepted, run.ScoreDifference, run.ModelKey,
	)
	if err != nil {
		return fmt.Errorf("create training run: %w", err)
	}
	return nil
}

func (r *trainingRunRepo) Update(ctx context.Context, run *domain.TrainingRun) error {
	query := `
		UPDATE training_run
		SET finished_at = $1, status = $2, failed_stage = $3, error_message = $4,
			trained_model_score = $5, deployed_model_score = $6,
			is_model_accepted = $7, score_difference = $8, model_key = $9
		WHERE id = $10
	`

	result, err := r.pool.Exec(ctx, query,
		run.FinishedAt, string(run.Status), string(run.FailedStage), run.ErrorMessage,
		run.TrainedModelScore, run.DeployedModelScore,
		run.IsModelAccepted, run.ScoreDifference, run.ModelKey,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update training run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}
