package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/testutil"
)

func newPipelineConfig(t *testing.T) *config.TrainingPipelineConfig {
	t.Helper()
	cfg := testutil.TestConfig(t.TempDir())
	return config.NewTrainingPipelineConfig(cfg, testutil.ShippingSchema(), time.Now())
}

// ingest runs the ingestion stage over n generated rows.
func ingest(t *testing.T, pc *config.TrainingPipelineConfig, n int) *domain.DataIngestionArtifacts {
	t.Helper()
	docs := new(testutil.MockDocumentStore)
	docs.On("GetCollectionAsFrame", mock.Anything, "shipping", "shipping_data").Return(testutil.ShippingFrame(n, 1), nil)

	art, err := NewDataIngestion(pc.DataIngestion(), docs).InitiateDataIngestion(context.Background())
	require.NoError(t, err)
	return art
}

// train runs ingestion, transformation and training.
func train(t *testing.T, pc *config.TrainingPipelineConfig) (*domain.DataIngestionArtifacts, *domain.ModelTrainerArtifacts) {
	t.Helper()
	ing := ingest(t, pc, 200)

	tr, err := NewDataTransformation(pc.DataTransformation(), *ing).InitiateDataTransformation()
	require.NoError(t, err)

	mt, err := NewModelTrainer(pc.ModelTrainer(), *tr).InitiateModelTrainer()
	require.NoError(t, err)
	return ing, mt
}
