package services

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/dataset"
	"shipping-price-pipeline/internal/ml"
)

// ModelTrainer fits the regression on the transformed train split.
type ModelTrainer struct {
	cfg            config.ModelTrainerConfig
	transformation domain.DataTransformationArtifacts
}

func NewModelTrainer(cfg config.ModelTrainerConfig, transformation domain.DataTransformationArtifacts) *ModelTrainer {
	return &ModelTrainer{cfg: cfg, transformation: transformation}
}

func (s *ModelTrainer) fail(op string, err error) error {
	return domain.NewPipelineError(domain.StageTrainer, op, err)
}

// InitiateModelTrainer trains, scores and saves the model bundle.
func (s *ModelTrainer) InitiateModelTrainer() (*domain.ModelTrainerArtifacts, error) {
	logger := log.WithField("stage", domain.StageTrainer)
	logger.Info("entered model trainer")

	pre, err := ml.LoadPreprocessor(s.transformation.PreprocessorFilePath)
	if err != nil {
		return nil, s.fail("load preprocessor", err)
	}

	xTrain, yTrain, err := s.readMatrix(s.transformation.TransformedTrainFilePath)
	if err != nil {
		return nil, s.fail("read transformed train", err)
	}
	xTest, yTest, err := s.readMatrix(s.transformation.TransformedTestFilePath)
	if err != nil {
		return nil, s.fail("read transformed test", err)
	}

	reg, err := ml.FitRidge(xTrain, yTrain, s.cfg.Alpha)
	if err != nil {
		return nil, s.fail("fit model", err)
	}

	trainScore, err := score(reg, xTrain, yTrain)
	if err != nil {
		return nil, s.fail("score train split", err)
	}
	testScore, err := score(reg, xTest, yTest)
	if err != nil {
		return nil, s.fail("score test split", err)
	}

	logger.WithFields(log.Fields{
		"train_r2": trainScore,
		"test_r2":  testScore,
	}).Info("trained regression model")

	if testScore < s.cfg.ExpectedScore {
		return nil, s.fail("check score", fmt.Errorf("%w: %.4f < %.4f", domain.ErrModelBelowExpected, testScore, s.cfg.ExpectedScore))
	}

	model := &ml.Model{
		Name:         s.cfg.ModelName,
		Target:       s.cfg.TargetColumn,
		TrainedAt:    time.Now().UTC(),
		FeatureNames: pre.FeatureNames(),
		Preprocessor: pre,
		Regression:   reg,
	}
	if err := ml.SaveModel(s.cfg.TrainedModelFilePath, model); err != nil {
		return nil, s.fail("save model", err)
	}

	logger.WithField("model", s.cfg.TrainedModelFilePath).Info("exited model trainer")
	return &domain.ModelTrainerArtifacts{
		TrainedModelFilePath: s.cfg.TrainedModelFilePath,
		TrainScore:           trainScore,
		TestScore:            testScore,
	}, nil
}

// readMatrix splits a transformed CSV into features and target.
func (s *ModelTrainer) readMatrix(path string) ([][]float64, []float64, error) {
	f, err := dataset.ReadCSVFile(path)
	if err != nil {
		return nil, nil, err
	}
	y, err := f.FloatColumn(s.cfg.TargetColumn)
	if err != nil {
		return nil, nil, err
	}
	features, err := f.Drop(s.cfg.TargetColumn)
	if err != nil {
		return nil, nil, err
	}

	x := make([][]float64, features.Len())
	for i := range x {
		x[i] = make([]float64, len(features.Columns))
	}
	for j, col := range features.Columns {
		vals, err := features.FloatColumn(col)
		if err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			x[i][j] = v
		}
	}
	return x, y, nil
}

func score(reg *ml.LinearRegression, x [][]float64, y []float64) (float64, error) {
	yHat, err := reg.Predict(x)
	if err != nil {
		return 0, err
	}
	return ml.R2Score(y, yHat)
}
