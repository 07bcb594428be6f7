package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/dataset"
	"shipping-price-pipeline/internal/ml"
)

func TestDataTransformation_WritesEncodedSplits(t *testing.T) {
	pc := newPipelineConfig(t)
	ing := ingest(t, pc, 100)

	art, err := NewDataTransformation(pc.DataTransformation(), *ing).InitiateDataTransformation()
	require.NoError(t, err)

	pre, err := ml.LoadPreprocessor(art.PreprocessorFilePath)
	require.NoError(t, err)

	train, err := dataset.ReadCSVFile(art.TransformedTrainFilePath)
	require.NoError(t, err)
	test, err := dataset.ReadCSVFile(art.TransformedTestFilePath)
	require.NoError(t, err)

	assert.Equal(t, append(pre.FeatureNames(), "Cost"), train.Columns)
	assert.Equal(t, train.Columns, test.Columns)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, test.Len())

	weights, err := train.FloatColumn("Weight")
	require.NoError(t, err)
	var sum float64
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 0, sum/float64(len(weights)), 1e-6)
}

func TestDataTransformation_MissingInput(t *testing.T) {
	pc := newPipelineConfig(t)
	_, err := NewDataTransformation(pc.DataTransformation(), domain.DataIngestionArtifacts{
		TrainFilePath: "missing.csv",
		TestFilePath:  "missing.csv",
	}).InitiateDataTransformation()
	assert.Equal(t, domain.StageTransformation, domain.FailedStage(err))
}

func TestModelTrainer_FitsLinearData(t *testing.T) {
	pc := newPipelineConfig(t)
	_, art := train(t, pc)

	assert.Greater(t, art.TrainScore, 0.99)
	assert.Greater(t, art.TestScore, 0.99)
	assert.FileExists(t, art.TrainedModelFilePath)

	model, err := ml.LoadModel(art.TrainedModelFilePath)
	require.NoError(t, err)
	assert.Equal(t, "Cost", model.Target)
	assert.Equal(t, model.Preprocessor.FeatureNames(), model.FeatureNames)
}

func TestModelTrainer_BelowExpectedScore(t *testing.T) {
	pc := newPipelineConfig(t)
	pc.Config.Pipeline.ExpectedScore = 1.5
	ing := ingest(t, pc, 100)

	tr, err := NewDataTransformation(pc.DataTransformation(), *ing).InitiateDataTransformation()
	require.NoError(t, err)

	art, err := NewModelTrainer(pc.ModelTrainer(), *tr).InitiateModelTrainer()
	assert.Nil(t, art)
	assert.ErrorIs(t, err, domain.ErrModelBelowExpected)
	assert.Equal(t, domain.StageTrainer, domain.FailedStage(err))
	assert.NoFileExists(t, pc.ModelTrainer().TrainedModelFilePath)
}
