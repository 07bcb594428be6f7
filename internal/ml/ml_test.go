package ml

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/dataset"
)

// linearFrame builds rows where cost = 3*weight + 10 for "air" and 3*weight - 5 for "sea".
func linearFrame(n int) *dataset.Frame {
	f := dataset.New("weight", "transport", "cost")
	for i := 0; i < n; i++ {
		w := float64(i)
		mode, offset := "air", 10.0
		if i%2 == 1 {
			mode, offset = "sea", -5.0
		}
		cost := 3*w + offset
		f.Rows = append(f.Rows, []string{
			strconv.FormatFloat(w, 'f', -1, 64),
			mode,
			strconv.FormatFloat(cost, 'f', -1, 64),
		})
	}
	return f
}

func TestFitPreprocessor(t *testing.T) {
	f := linearFrame(4)
	p, err := FitPreprocessor(f, "cost", []string{"weight"}, []string{"transport"})
	require.NoError(t, err)

	require.Len(t, p.Numerical, 1)
	assert.InDelta(t, 1.5, p.Numerical[0].Mean, 1e-12)
	assert.Equal(t, []string{"air", "sea"}, p.Categorical[0].Categories)
	assert.Equal(t, []string{"weight", "transport_air", "transport_sea"}, p.FeatureNames())
	assert.Equal(t, 3, p.Width())
}

func TestFitPreprocessor_RejectsCollidingFeatureNames(t *testing.T) {
	f := dataset.New("transport_air", "transport", "cost")
	f.Rows = [][]string{{"1", "air", "3"}, {"0", "sea", "4"}}

	_, err := FitPreprocessor(f, "cost", []string{"transport_air"}, []string{"transport"})
	assert.ErrorIs(t, err, domain.ErrInvalidSchema)
	assert.Contains(t, err.Error(), `duplicate feature "transport_air"`)
}

func TestFitPreprocessor_RejectsFeatureShadowingTarget(t *testing.T) {
	f := dataset.New("mode", "mode_fast")
	f.Rows = [][]string{{"fast", "1"}, {"slow", "2"}}

	_, err := FitPreprocessor(f, "mode_fast", nil, []string{"mode"})
	assert.ErrorIs(t, err, domain.ErrInvalidSchema)
}

func TestPreprocessor_TransformUnknownCategory(t *testing.T) {
	p := &Preprocessor{
		Numerical:   []NumericScaler{{Column: "weight", Mean: 2, Std: 2}},
		Categorical: []OneHotEncoder{{Column: "transport", Categories: []string{"air", "sea"}}},
	}
	f := &dataset.Frame{Columns: []string{"transport", "weight"}, Rows: [][]string{{"road", "4"}, {"sea", "0"}}}

	x, err := p.Transform(f)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0, 0}, {-1, 0, 1}}, x)
}

func TestPreprocessor_TransformMissingColumn(t *testing.T) {
	p := &Preprocessor{Numerical: []NumericScaler{{Column: "weight", Std: 1}}}
	_, err := p.Transform(dataset.New("other"))
	assert.Error(t, err)
}

func TestFitRidge_RecoversLinearRelation(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{1, 3, 5, 7, 9}

	reg, err := FitRidge(x, y, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, reg.Intercept, 1e-9)
	assert.InDelta(t, 2, reg.Coefficients[0], 1e-9)

	yHat, err := reg.Predict([][]float64{{10}})
	require.NoError(t, err)
	assert.InDelta(t, 21, yHat[0], 1e-9)
}

func TestFitRidge_PenaltyShrinksCoefficients(t *testing.T) {
	x := [][]float64{{-2}, {-1}, {0}, {1}, {2}}
	y := []float64{-4, -2, 0, 2, 4}

	ols, err := FitRidge(x, y, 0)
	require.NoError(t, err)
	ridge, err := FitRidge(x, y, 10)
	require.NoError(t, err)
	assert.Less(t, ridge.Coefficients[0], ols.Coefficients[0])
}

func TestFitRidge_BadInput(t *testing.T) {
	_, err := FitRidge(nil, nil, 1)
	assert.Error(t, err)

	_, err = FitRidge([][]float64{{1}}, []float64{1, 2}, 1)
	assert.Error(t, err)

	_, err = FitRidge([][]float64{{1}}, []float64{1}, -1)
	assert.Error(t, err)
}

func TestR2Score(t *testing.T) {
	score, err := R2Score([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1, score, 1e-12)

	score, err = R2Score([]float64{1, 2, 3}, []float64{2, 2, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0, score, 1e-12)

	score, err = R2Score([]float64{5, 5}, []float64{5, 4})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	_, err = R2Score([]float64{1}, nil)
	assert.Error(t, err)
}

func TestModel_ScoreAndPersist(t *testing.T) {
	train := linearFrame(40)
	p, err := FitPreprocessor(train, "cost", []string{"weight"}, []string{"transport"})
	require.NoError(t, err)
	x, err := p.Transform(train)
	require.NoError(t, err)
	y, err := train.FloatColumn("cost")
	require.NoError(t, err)

	reg, err := FitRidge(x, y, 1e-3)
	require.NoError(t, err)

	m := &Model{Name: "shipping", Target: "cost", Preprocessor: p, Regression: reg, FeatureNames: p.FeatureNames()}
	score, err := m.Score(linearFrame(10))
	require.NoError(t, err)
	assert.InDelta(t, 1, score, 1e-6)

	path := filepath.Join(t.TempDir(), "model", "model.json")
	require.NoError(t, SaveModel(path, m))
	loaded, err := LoadModel(path)
	require.NoError(t, err)

	reloaded, err := loaded.Score(linearFrame(10))
	require.NoError(t, err)
	assert.InDelta(t, score, reloaded, 1e-12)
}

func TestDecodeModel_Invalid(t *testing.T) {
	_, err := DecodeModel([]byte("not json"))
	assert.Error(t, err)
}
