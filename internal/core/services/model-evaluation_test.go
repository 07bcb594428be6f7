package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/ml"
	"shipping-price-pipeline/internal/testutil"
)

func TestModelEvaluation_NoDeployedModel(t *testing.T) {
	pc := newPipelineConfig(t)
	ing, mt := train(t, pc)

	objects := new(testutil.MockObjectStore)
	objects.On("IsObjectPresent", mock.Anything, "models", "model/shipping_price_model.json").Return(false, nil)

	art, err := NewModelEvaluation(pc.ModelEvaluation(), *mt, *ing, objects).InitiateModelEvaluation(context.Background())
	require.NoError(t, err)

	assert.True(t, art.IsModelAccepted)
	assert.Nil(t, art.DeployedModelScore)
	assert.Equal(t, art.TrainedModelScore, art.ChangedAccuracy)
	assert.Equal(t, mt.TrainedModelFilePath, art.TrainedModelPath)
	objects.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything)
}

func TestModelEvaluation_DeployedModelNotBeaten(t *testing.T) {
	pc := newPipelineConfig(t)
	ing, mt := train(t, pc)

	// The deployed model is the trained one, so the scores tie.
	data, err := os.ReadFile(mt.TrainedModelFilePath)
	require.NoError(t, err)

	objects := new(testutil.MockObjectStore)
	objects.On("IsObjectPresent", mock.Anything, "models", "model/shipping_price_model.json").Return(true, nil)
	objects.On("GetObject", mock.Anything, "models", "model/shipping_price_model.json").Return(data, nil)

	art, err := NewModelEvaluation(pc.ModelEvaluation(), *mt, *ing, objects).InitiateModelEvaluation(context.Background())
	require.NoError(t, err)

	require.NotNil(t, art.DeployedModelScore)
	assert.InDelta(t, art.TrainedModelScore, *art.DeployedModelScore, 1e-12)
	assert.InDelta(t, 0, art.ChangedAccuracy, 1e-12)
	assert.False(t, art.IsModelAccepted)
}

func TestModelEvaluation_BeatsWeakDeployedModel(t *testing.T) {
	pc := newPipelineConfig(t)
	ing, mt := train(t, pc)

	weak, err := ml.LoadModel(mt.TrainedModelFilePath)
	require.NoError(t, err)
	for i := range weak.Regression.Coefficients {
		weak.Regression.Coefficients[i] = 0
	}
	weakPath := t.TempDir() + "/weak.json"
	require.NoError(t, ml.SaveModel(weakPath, weak))
	data, err := os.ReadFile(weakPath)
	require.NoError(t, err)

	objects := new(testutil.MockObjectStore)
	objects.On("IsObjectPresent", mock.Anything, "models", "model/shipping_price_model.json").Return(true, nil)
	objects.On("GetObject", mock.Anything, "models", "model/shipping_price_model.json").Return(data, nil)

	art, err := NewModelEvaluation(pc.ModelEvaluation(), *mt, *ing, objects).InitiateModelEvaluation(context.Background())
	require.NoError(t, err)

	require.NotNil(t, art.DeployedModelScore)
	assert.True(t, art.IsModelAccepted)
	assert.InDelta(t, art.TrainedModelScore-*art.DeployedModelScore, art.ChangedAccuracy, 1e-12)
	assert.Greater(t, art.ChangedAccuracy, 0.0)
}

func TestModelEvaluation_ObjectStoreError(t *testing.T) {
	pc := newPipelineConfig(t)
	ing, mt := train(t, pc)

	objects := new(testutil.MockObjectStore)
	objects.On("IsObjectPresent", mock.Anything, "models", "model/shipping_price_model.json").Return(false, errors.New("access denied"))

	art, err := NewModelEvaluation(pc.ModelEvaluation(), *mt, *ing, objects).InitiateModelEvaluation(context.Background())
	assert.Nil(t, art)
	assert.Equal(t, domain.StageEvaluation, domain.FailedStage(err))
}

func TestCompareScores(t *testing.T) {
	deployed := 0.9
	negative := -0.4

	tests := []struct {
		name        string
		trained     float64
		deployed    *float64
		forceAccept bool
		accepted    bool
		difference  float64
	}{
		{"no deployed model", 0.8, nil, false, true, 0.8},
		{"no deployed model and negative score", -0.2, nil, false, false, -0.2},
		{"better than deployed", 0.95, &deployed, false, true, 0.05},
		{"worse than deployed", 0.85, &deployed, false, false, -0.05},
		{"negative deployed score", 0.1, &negative, false, true, 0.5},
		{"negative score above negative deployed", -0.2, &negative, false, true, 0.2},
		{"tie with deployed", 0.9, &deployed, false, false, 0},
		{"forced", 0.5, &deployed, true, true, -0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := compareScores(tt.trained, tt.deployed, tt.forceAccept)
			assert.Equal(t, tt.accepted, resp.IsModelAccepted)
			assert.InDelta(t, tt.difference, resp.Difference, 1e-12)
			assert.Equal(t, tt.trained, resp.TrainedModelScore)
			assert.Equal(t, tt.deployed, resp.DeployedModelScore)
		})
	}
}
