package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	ports "shipping-price-pipeline/internal/core/ports/output"
	"shipping-price-pipeline/internal/dataset"
	"shipping-price-pipeline/internal/ml"
)

// ModelEvaluation compares the trained model with the one in the bucket.
type ModelEvaluation struct {
	cfg       config.ModelEvaluationConfig
	trainer   domain.ModelTrainerArtifacts
	ingestion domain.DataIngestionArtifacts
	objects   ports.ObjectStore
}

func NewModelEvaluation(
	cfg config.ModelEvaluationConfig,
	trainer domain.ModelTrainerArtifacts,
	ingestion domain.DataIngestionArtifacts,
	objects ports.ObjectStore,
) *ModelEvaluation {
	return &ModelEvaluation{cfg: cfg, trainer: trainer, ingestion: ingestion, objects: objects}
}

func (s *ModelEvaluation) fail(op string, err error) error {
	return domain.NewPipelineError(domain.StageEvaluation, op, err)
}

// GetDeployedModel loads the production model, or returns nil when the bucket has none.
func (s *ModelEvaluation) GetDeployedModel(ctx context.Context) (*ml.Model, error) {
	present, err := s.objects.IsObjectPresent(ctx, s.cfg.BucketName, s.cfg.S3ModelKey)
	if err != nil {
		return nil, s.fail("check deployed model", err)
	}
	log.WithFields(log.Fields{
		"bucket":  s.cfg.BucketName,
		"key":     s.cfg.S3ModelKey,
		"present": present,
	}).Info("checked for deployed model")
	if !present {
		return nil, nil
	}

	data, err := s.objects.GetObject(ctx, s.cfg.BucketName, s.cfg.S3ModelKey)
	if err != nil {
		return nil, s.fail("download deployed model", err)
	}
	model, err := ml.DecodeModel(data)
	if err != nil {
		return nil, s.fail("decode deployed model", err)
	}
	return model, nil
}

// EvaluateModel scores both models on the held-out test split.
func (s *ModelEvaluation) EvaluateModel(ctx context.Context) (*domain.EvaluateModelResponse, error) {
	test, err := dataset.ReadCSVFile(s.ingestion.TestFilePath)
	if err != nil {
		return nil, s.fail("read test split", err)
	}

	trained, err := ml.LoadModel(s.trainer.TrainedModelFilePath)
	if err != nil {
		return nil, s.fail("load trained model", err)
	}
	trainedScore, err := trained.Score(test)
	if err != nil {
		return nil, s.fail("score trained model", err)
	}

	deployed, err := s.GetDeployedModel(ctx)
	if err != nil {
		return nil, err
	}

	var deployedScore *float64
	if deployed != nil {
		sc, err := deployed.Score(test)
		if err != nil {
			return nil, s.fail("score deployed model", err)
		}
		deployedScore = &sc
	}

	return compareScores(trainedScore, deployedScore, s.cfg.ForceAccept), nil
}

// compareScores treats a missing deployed model as scoring 0. The trained
// model is accepted when it beats that baseline.
func compareScores(trained float64, deployed *float64, forceAccept bool) *domain.EvaluateModelResponse {
	baseline := 0.0
	if deployed != nil {
		baseline = *deployed
	}
	return &domain.EvaluateModelResponse{
		TrainedModelScore:  trained,
		DeployedModelScore: deployed,
		IsModelAccepted:    forceAccept || trained > baseline,
		Difference:         trained - baseline,
	}
}

// InitiateModelEvaluation runs the comparison and returns the evaluation artifact.
func (s *ModelEvaluation) InitiateModelEvaluation(ctx context.Context) (*domain.ModelEvaluationArtifacts, error) {
	logger := log.WithField("stage", domain.StageEvaluation)
	logger.Info("entered model evaluation")

	resp, err := s.EvaluateModel(ctx)
	if err != nil {
		return nil, err
	}

	fields := log.Fields{
		"trained_r2": resp.TrainedModelScore,
		"difference": resp.Difference,
		"accepted":   resp.IsModelAccepted,
	}
	if resp.DeployedModelScore != nil {
		fields["deployed_r2"] = *resp.DeployedModelScore
	}
	logger.WithFields(fields).Info("exited model evaluation")

	return &domain.ModelEvaluationArtifacts{
		IsModelAccepted:    resp.IsModelAccepted,
		TrainedModelPath:   s.trainer.TrainedModelFilePath,
		ChangedAccuracy:    resp.Difference,
		TrainedModelScore:  resp.TrainedModelScore,
		DeployedModelScore: resp.DeployedModelScore,
	}, nil
}
