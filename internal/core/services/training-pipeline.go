package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	ports "shipping-price-pipeline/internal/core/ports/output"
)

// PipelineResult collects every artifact of a finished run.
type PipelineResult struct {
	Run            *domain.TrainingRun
	Ingestion      *domain.DataIngestionArtifacts
	Validation     *domain.DataValidationArtifacts
	Transformation *domain.DataTransformationArtifacts
	Trainer        *domain.ModelTrainerArtifacts
	Evaluation     *domain.ModelEvaluationArtifacts
	Pusher         *domain.ModelPusherArtifacts
}

// TrainingPipeline runs the stages in fixed order and stops at the first error.
type TrainingPipeline struct {
	cfg     *config.TrainingPipelineConfig
	docs    ports.DocumentStore
	objects ports.ObjectStore
	runs    ports.TrainingRunRepository
	kserve  ports.KServeClient
}

// NewTrainingPipeline wires the stages. runs and kserve may be nil.
func NewTrainingPipeline(
	cfg *config.TrainingPipelineConfig,
	docs ports.DocumentStore,
	objects ports.ObjectStore,
	runs ports.TrainingRunRepository,
	kserve ports.KServeClient,
) *TrainingPipeline {
	return &TrainingPipeline{
		cfg:     cfg,
		docs:    docs,
		objects: objects,
		runs:    runs,
		kserve:  kserve,
	}
}

func (p *TrainingPipeline) StartDataIngestion(ctx context.Context) (*domain.DataIngestionArtifacts, error) {
	return NewDataIngestion(p.cfg.DataIngestion(), p.docs).InitiateDataIngestion(ctx)
}

func (p *TrainingPipeline) StartDataValidation(ingestion *domain.DataIngestionArtifacts) (*domain.DataValidationArtifacts, error) {
	return NewDataValidation(p.cfg.DataValidation(), *ingestion).InitiateDataValidation()
}

func (p *TrainingPipeline) StartDataTransformation(ingestion *domain.DataIngestionArtifacts) (*domain.DataTransformationArtifacts, error) {
	return NewDataTransformation(p.cfg.DataTransformation(), *ingestion).InitiateDataTransformation()
}

func (p *TrainingPipeline) StartModelTrainer(transformation *domain.DataTransformationArtifacts) (*domain.ModelTrainerArtifacts, error) {
	return NewModelTrainer(p.cfg.ModelTrainer(), *transformation).InitiateModelTrainer()
}

func (p *TrainingPipeline) StartModelEvaluation(
	ctx context.Context,
	trainer *domain.ModelTrainerArtifacts,
	ingestion *domain.DataIngestionArtifacts,
) (*domain.ModelEvaluationArtifacts, error) {
	return NewModelEvaluation(p.cfg.ModelEvaluation(), *trainer, *ingestion, p.objects).InitiateModelEvaluation(ctx)
}

func (p *TrainingPipeline) StartModelPusher(ctx context.Context, evaluation *domain.ModelEvaluationArtifacts) (*domain.ModelPusherArtifacts, error) {
	return NewModelPusher(p.cfg.ModelPusher(), *evaluation, p.objects, p.kserve).InitiateModelPusher(ctx)
}

// RunPipeline executes every stage once. The returned result holds the
// artifacts produced before any failure.
func (p *TrainingPipeline) RunPipeline(ctx context.Context) (*PipelineResult, error) {
	run := domain.NewTrainingRun(p.cfg.ArtifactDir)
	logger := log.WithFields(log.Fields{
		"run_id":       run.ID,
		"artifact_dir": p.cfg.ArtifactDir,
	})
	logger.Info("entered training pipeline")

	if p.runs != nil {
		if err := p.runs.Create(ctx, run); err != nil {
			return nil, domain.NewPipelineError(domain.StagePipeline, "record run start", err)
		}
	}

	res := &PipelineResult{Run: run}
	err := p.runStages(ctx, res)
	if err != nil {
		run.MarkFailed(err)
		logger.WithError(err).WithField("failed_stage", run.FailedStage).Error("training pipeline failed")
	} else {
		run.MarkSucceeded(res.Pusher)
		logger.WithField("pushed", res.Pusher.Pushed).Info("exited training pipeline")
	}

	if p.runs != nil {
		// The run may have been cancelled; the final record still has to land.
		if uerr := p.runs.Update(context.WithoutCancel(ctx), run); uerr != nil {
			if err != nil {
				logger.WithError(uerr).Warn("record run outcome failed")
			} else {
				err = domain.NewPipelineError(domain.StagePipeline, "record run outcome", uerr)
			}
		}
	}

	return res, err
}

func (p *TrainingPipeline) runStages(ctx context.Context, res *PipelineResult) error {
	var err error

	if res.Ingestion, err = p.StartDataIngestion(ctx); err != nil {
		return wrapStageError(domain.StageIngestion, err)
	}
	if res.Validation, err = p.StartDataValidation(res.Ingestion); err != nil {
		return wrapStageError(domain.StageValidation, err)
	}
	if res.Transformation, err = p.StartDataTransformation(res.Ingestion); err != nil {
		return wrapStageError(domain.StageTransformation, err)
	}
	if res.Trainer, err = p.StartModelTrainer(res.Transformation); err != nil {
		return wrapStageError(domain.StageTrainer, err)
	}
	if res.Evaluation, err = p.StartModelEvaluation(ctx, res.Trainer, res.Ingestion); err != nil {
		return wrapStageError(domain.StageEvaluation, err)
	}
	res.Run.RecordEvaluation(res.Evaluation)
	if res.Pusher, err = p.StartModelPusher(ctx, res.Evaluation); err != nil {
		return wrapStageError(domain.StagePusher, err)
	}
	return nil
}

func wrapStageError(stage domain.Stage, err error) error {
	return domain.NewPipelineError(stage, "start "+string(stage), err)
}
