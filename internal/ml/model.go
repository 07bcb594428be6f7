package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shipping-price-pipeline/internal/dataset"
)

// Model is the serialized unit pushed to object storage. It carries its own
// preprocessor so it can score raw rows.
type Model struct {
	Name         string            `json:"name"`
	Target       string            `json:"target"`
	TrainedAt    time.Time         `json:"trained_at"`
	FeatureNames []string          `json:"feature_names"`
	Preprocessor *Preprocessor     `json:"preprocessor"`
	Regression   *LinearRegression `json:"regression"`
}

// Predict scores raw rows of f.
func (m *Model) Predict(f *dataset.Frame) ([]float64, error) {
	if m.Preprocessor == nil || m.Regression == nil {
		return nil, fmt.Errorf("model %q is incomplete", m.Name)
	}
	x, err := m.Preprocessor.Transform(f)
	if err != nil {
		return nil, err
	}
	return m.Regression.Predict(x)
}

// Score predicts f and returns the R² against its target column.
func (m *Model) Score(f *dataset.Frame) (float64, error) {
	y, err := f.FloatColumn(m.Target)
	if err != nil {
		return 0, err
	}
	yHat, err := m.Predict(f)
	if err != nil {
		return 0, err
	}
	return R2Score(y, yHat)
}

// SaveModel writes m as JSON to path.
func SaveModel(path string, m *Model) error {
	return writeJSON(path, m)
}

// LoadModel reads a model file written by SaveModel.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return DecodeModel(data)
}

// DecodeModel parses a serialized model.
func DecodeModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
