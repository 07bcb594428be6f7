package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the lifecycle state of a training run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// TrainingRun is the registry record of one pipeline invocation.
type TrainingRun struct {
	ID                 uuid.UUID  `json:"id"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at"`
	Status             RunStatus  `json:"status"`
	FailedStage        Stage      `json:"failed_stage,omitempty"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	ArtifactDir        string     `json:"artifact_dir"`
	TrainedModelScore  *float64   `json:"trained_model_score"`
	DeployedModelScore *float64   `json:"deployed_model_score"`
	IsModelAccepted    bool       `json:"is_model_accepted"`
	ScoreDifference    *float64   `json:"score_difference"`
	ModelKey           string     `json:"model_key,omitempty"`
}

// NewTrainingRun creates a running TrainingRun for the given artifact directory
func NewTrainingRun(artifactDir string) *TrainingRun {
	return &TrainingRun{
		ID:          uuid.New(),
		StartedAt:   time.Now(),
		Status:      RunStatusRunning,
		ArtifactDir: artifactDir,
	}
}

// RecordEvaluation copies the evaluation outcome onto the run
func (r *TrainingRun) RecordEvaluation(eval *ModelEvaluationArtifacts) {
	score := eval.TrainedModelScore
	diff := eval.ChangedAccuracy
	r.TrainedModelScore = &score
	r.ScoreDifference = &diff
	r.DeployedModelScore = eval.DeployedModelScore
	r.IsModelAccepted = eval.IsModelAccepted
}

// MarkSucceeded closes the run, keeping the pushed model key if any
func (r *TrainingRun) MarkSucceeded(push *ModelPusherArtifacts) {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
	if push != nil && push.Pushed {
		r.ModelKey = push.VersionedModelPath
	}
}

// MarkFailed closes the run with the failing stage and its error
func (r *TrainingRun) MarkFailed(err error) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.FailedStage = FailedStage(err)
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// IsFinished returns true once the run reached a terminal state
func (r *TrainingRun) IsFinished() bool {
	return r.Status == RunStatusSucceeded || r.Status == RunStatusFailed
}
