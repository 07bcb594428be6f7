package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineError_KeepsInnermostStage(t *testing.T) {
	inner := NewPipelineError(StageIngestion, "get collection", ErrEmptyCollection)
	outer := NewPipelineError(StagePipeline, "start", fmt.Errorf("wrapped: %w", inner))

	assert.Equal(t, StageIngestion, FailedStage(outer))
	assert.ErrorIs(t, outer, ErrEmptyCollection)
	assert.Nil(t, NewPipelineError(StageTrainer, "fit", nil))
	assert.Equal(t, Stage(""), FailedStage(errors.New("plain")))
	assert.Equal(t, "data_ingestion: get collection: collection returned no documents", inner.Error())
}

func TestTrainingRun_Lifecycle(t *testing.T) {
	run := NewTrainingRun("artifacts/01_02_2026_10_00_00")
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.False(t, run.IsFinished())

	deployed := 0.7
	run.RecordEvaluation(&ModelEvaluationArtifacts{
		IsModelAccepted:    true,
		ChangedAccuracy:    0.2,
		TrainedModelScore:  0.9,
		DeployedModelScore: &deployed,
	})
	run.MarkSucceeded(&ModelPusherArtifacts{Pushed: true, VersionedModelPath: "model/versions/x/m.json"})

	assert.True(t, run.IsFinished())
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, 0.9, *run.TrainedModelScore)
	assert.Equal(t, 0.2, *run.ScoreDifference)
	assert.Equal(t, "model/versions/x/m.json", run.ModelKey)
}

func TestTrainingRun_MarkFailed(t *testing.T) {
	run := NewTrainingRun("artifacts")
	run.MarkFailed(NewPipelineError(StagePusher, "upload model", errors.New("denied")))

	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, StagePusher, run.FailedStage)
	assert.Contains(t, run.ErrorMessage, "denied")
	assert.Empty(t, run.ModelKey)
}
