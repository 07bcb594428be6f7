package services

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	ports "shipping-price-pipeline/internal/core/ports/output"
	"shipping-price-pipeline/internal/dataset"
)

// DataIngestion pulls the shipping collection and persists a train/test split.
type DataIngestion struct {
	cfg  config.DataIngestionConfig
	docs ports.DocumentStore
}

func NewDataIngestion(cfg config.DataIngestionConfig, docs ports.DocumentStore) *DataIngestion {
	return &DataIngestion{cfg: cfg, docs: docs}
}

func (s *DataIngestion) fail(op string, err error) error {
	return domain.NewPipelineError(domain.StageIngestion, op, err)
}

// GetDataFromMongoDB fetches the configured collection as a frame.
func (s *DataIngestion) GetDataFromMongoDB(ctx context.Context) (*dataset.Frame, error) {
	frame, err := s.docs.GetCollectionAsFrame(ctx, s.cfg.DBName, s.cfg.CollectionName)
	if err != nil {
		return nil, s.fail("get collection", err)
	}
	if frame.Len() == 0 {
		return nil, s.fail("get collection", domain.ErrEmptyCollection)
	}
	return frame, nil
}

// SplitDataAsTrainTest splits frame and writes both halves as CSV.
func (s *DataIngestion) SplitDataAsTrainTest(frame *dataset.Frame) (train, test *dataset.Frame, err error) {
	for _, dir := range []string{s.cfg.DataIngestionArtifactDir, s.cfg.TrainDataDir, s.cfg.TestDataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, s.fail("create artifact dir", err)
		}
	}

	train, test, err = dataset.TrainTestSplit(frame, s.cfg.TestSize, s.cfg.Seed)
	if err != nil {
		return nil, nil, s.fail("train test split", err)
	}

	if err := dataset.WriteCSVFile(s.cfg.TrainDataFilePath, train); err != nil {
		return nil, nil, s.fail("write train split", err)
	}
	if err := dataset.WriteCSVFile(s.cfg.TestDataFilePath, test); err != nil {
		return nil, nil, s.fail("write test split", err)
	}

	log.WithFields(log.Fields{
		"train_rows": train.Len(),
		"test_rows":  test.Len(),
		"train_file": s.cfg.TrainDataFilePath,
		"test_file":  s.cfg.TestDataFilePath,
	}).Info("saved train and test splits")

	return train, test, nil
}

// InitiateDataIngestion fetches, cleans and splits the data.
func (s *DataIngestion) InitiateDataIngestion(ctx context.Context) (*domain.DataIngestionArtifacts, error) {
	logger := log.WithField("stage", domain.StageIngestion)
	logger.Info("entered data ingestion")

	frame, err := s.GetDataFromMongoDB(ctx)
	if err != nil {
		return nil, err
	}

	cleaned, err := frame.Drop(s.cfg.DropColumns...)
	if err != nil {
		return nil, s.fail("drop columns", err)
	}
	cleaned = cleaned.DropMissing()

	logger.WithFields(log.Fields{
		"fetched_rows": frame.Len(),
		"kept_rows":    cleaned.Len(),
		"dropped_cols": len(s.cfg.DropColumns),
	}).Info("dropped configured columns and incomplete rows")

	if cleaned.Len() < 2 {
		return nil, s.fail("clean data", fmt.Errorf("%w: %d complete rows", domain.ErrNotEnoughRows, cleaned.Len()))
	}

	if _, _, err := s.SplitDataAsTrainTest(cleaned); err != nil {
		return nil, err
	}

	logger.Info("exited data ingestion")
	return &domain.DataIngestionArtifacts{
		TrainFilePath: s.cfg.TrainDataFilePath,
		TestFilePath:  s.cfg.TestDataFilePath,
	}, nil
}
