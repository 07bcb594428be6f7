// Package ml contains the model side of the pipeline: feature preprocessing,
// ridge regression and the serialized model bundle.
package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/dataset"
)

// NumericScaler standardises one numerical column.
type NumericScaler struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// OneHotEncoder expands one categorical column into one feature per category.
type OneHotEncoder struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
}

// Preprocessor turns raw frame rows into feature vectors. It is fitted on the
// train split only.
type Preprocessor struct {
	Numerical   []NumericScaler `json:"numerical"`
	Categorical []OneHotEncoder `json:"categorical"`
}

// FitPreprocessor learns scaling parameters and category sets from f. The
// resulting feature names must be unique and must not shadow target.
func FitPreprocessor(f *dataset.Frame, target string, numerical, categorical []string) (*Preprocessor, error) {
	p := &Preprocessor{}

	for _, col := range numerical {
		vals, err := f.FloatColumn(col)
		if err != nil {
			return nil, fmt.Errorf("fit scaler: %w", err)
		}
		mean, std := stat.PopMeanStdDev(vals, nil)
		if std == 0 || len(vals) == 0 {
			std = 1
		}
		p.Numerical = append(p.Numerical, NumericScaler{Column: col, Mean: mean, Std: std})
	}

	for _, col := range categorical {
		cells, err := f.Column(col)
		if err != nil {
			return nil, fmt.Errorf("fit encoder: %w", err)
		}
		seen := map[string]bool{}
		var cats []string
		for _, c := range cells {
			c = strings.TrimSpace(c)
			if !seen[c] {
				seen[c] = true
				cats = append(cats, c)
			}
		}
		sort.Strings(cats)
		p.Categorical = append(p.Categorical, OneHotEncoder{Column: col, Categories: cats})
	}

	if err := checkFeatureNames(p.FeatureNames(), target); err != nil {
		return nil, err
	}
	return p, nil
}

// checkFeatureNames rejects names that would collide as CSV headers, such as a
// numerical "Transport_Air" next to the one-hot column of Transport=Air.
func checkFeatureNames(names []string, target string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == target {
			return fmt.Errorf("%w: feature %q shadows the target column", domain.ErrInvalidSchema, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate feature %q", domain.ErrInvalidSchema, name)
		}
		seen[name] = true
	}
	return nil
}

// FeatureNames returns the names of the produced features, in order.
func (p *Preprocessor) FeatureNames() []string {
	names := make([]string, 0, p.Width())
	for _, s := range p.Numerical {
		names = append(names, s.Column)
	}
	for _, e := range p.Categorical {
		for _, c := range e.Categories {
			names = append(names, e.Column+"_"+c)
		}
	}
	return names
}

// Width is the length of a feature vector.
func (p *Preprocessor) Width() int {
	w := len(p.Numerical)
	for _, e := range p.Categorical {
		w += len(e.Categories)
	}
	return w
}

// Transform encodes every row of f. Unknown categories encode as all zeros.
func (p *Preprocessor) Transform(f *dataset.Frame) ([][]float64, error) {
	numIdx := make([]int, len(p.Numerical))
	for i, s := range p.Numerical {
		numIdx[i] = f.ColumnIndex(s.Column)
		if numIdx[i] < 0 {
			return nil, fmt.Errorf("transform: %w: %s", domain.ErrMissingColumn, s.Column)
		}
	}
	catIdx := make([]int, len(p.Categorical))
	for i, e := range p.Categorical {
		catIdx[i] = f.ColumnIndex(e.Column)
		if catIdx[i] < 0 {
			return nil, fmt.Errorf("transform: %w: %s", domain.ErrMissingColumn, e.Column)
		}
	}

	width := p.Width()
	out := make([][]float64, f.Len())
	for r, row := range f.Rows {
		vec := make([]float64, width)
		pos := 0
		for i, s := range p.Numerical {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[numIdx[i]]), 64)
			if err != nil {
				return nil, fmt.Errorf("transform: column %q row %d: %w", s.Column, r, err)
			}
			vec[pos] = (v - s.Mean) / s.Std
			pos++
		}
		for i, e := range p.Categorical {
			cell := strings.TrimSpace(row[catIdx[i]])
			for _, c := range e.Categories {
				if c == cell {
					vec[pos] = 1
				}
				pos++
			}
		}
		out[r] = vec
	}
	return out, nil
}

// SavePreprocessor writes p as JSON to path.
func SavePreprocessor(path string, p *Preprocessor) error {
	return writeJSON(path, p)
}

// LoadPreprocessor reads a preprocessor written by SavePreprocessor.
func LoadPreprocessor(path string) (*Preprocessor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preprocessor: %w", err)
	}
	var p Preprocessor
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode preprocessor: %w", err)
	}
	return &p, nil
}
