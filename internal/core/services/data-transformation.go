package services

import (
	"strconv"

	log "github.com/sirupsen/logrus"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/dataset"
	"shipping-price-pipeline/internal/ml"
)

// DataTransformation fits the preprocessor on the train split and encodes both splits.
type DataTransformation struct {
	cfg       config.DataTransformationConfig
	ingestion domain.DataIngestionArtifacts
}

func NewDataTransformation(cfg config.DataTransformationConfig, ingestion domain.DataIngestionArtifacts) *DataTransformation {
	return &DataTransformation{cfg: cfg, ingestion: ingestion}
}

func (s *DataTransformation) fail(op string, err error) error {
	return domain.NewPipelineError(domain.StageTransformation, op, err)
}

// InitiateDataTransformation writes the preprocessor and both encoded splits.
func (s *DataTransformation) InitiateDataTransformation() (*domain.DataTransformationArtifacts, error) {
	logger := log.WithField("stage", domain.StageTransformation)
	logger.Info("entered data transformation")

	train, err := dataset.ReadCSVFile(s.ingestion.TrainFilePath)
	if err != nil {
		return nil, s.fail("read train split", err)
	}
	test, err := dataset.ReadCSVFile(s.ingestion.TestFilePath)
	if err != nil {
		return nil, s.fail("read test split", err)
	}

	pre, err := ml.FitPreprocessor(train, s.cfg.Schema.TargetColumn, s.cfg.Schema.NumericalColumns, s.cfg.Schema.CategoricalColumns)
	if err != nil {
		return nil, s.fail("fit preprocessor", err)
	}

	trainOut, err := s.encode(pre, train)
	if err != nil {
		return nil, s.fail("transform train split", err)
	}
	testOut, err := s.encode(pre, test)
	if err != nil {
		return nil, s.fail("transform test split", err)
	}

	if err := ml.SavePreprocessor(s.cfg.PreprocessorFilePath, pre); err != nil {
		return nil, s.fail("save preprocessor", err)
	}
	if err := dataset.WriteCSVFile(s.cfg.TransformedTrainFilePath, trainOut); err != nil {
		return nil, s.fail("write transformed train", err)
	}
	if err := dataset.WriteCSVFile(s.cfg.TransformedTestFilePath, testOut); err != nil {
		return nil, s.fail("write transformed test", err)
	}

	logger.WithFields(log.Fields{
		"features":     pre.Width(),
		"preprocessor": s.cfg.PreprocessorFilePath,
	}).Info("exited data transformation")

	return &domain.DataTransformationArtifacts{
		TransformedTrainFilePath: s.cfg.TransformedTrainFilePath,
		TransformedTestFilePath:  s.cfg.TransformedTestFilePath,
		PreprocessorFilePath:     s.cfg.PreprocessorFilePath,
	}, nil
}

// encode returns a frame of feature columns followed by the target column.
func (s *DataTransformation) encode(pre *ml.Preprocessor, f *dataset.Frame) (*dataset.Frame, error) {
	x, err := pre.Transform(f)
	if err != nil {
		return nil, err
	}
	target, err := f.Column(s.cfg.Schema.TargetColumn)
	if err != nil {
		return nil, err
	}

	out := dataset.New(append(pre.FeatureNames(), s.cfg.Schema.TargetColumn)...)
	out.Rows = make([][]string, len(x))
	for i, vec := range x {
		row := make([]string, 0, len(vec)+1)
		for _, v := range vec {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		out.Rows[i] = append(row, target[i])
	}
	return out, nil
}
