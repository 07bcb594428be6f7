package ml

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// LinearRegression is a fitted ridge regression. The intercept is not penalised.
type LinearRegression struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// FitRidge solves (XᵀX + αI)β = Xᵀy on x with a leading intercept column.
func FitRidge(x [][]float64, y []float64, alpha float64) (*LinearRegression, error) {
	n := len(x)
	if n == 0 {
		return nil, errors.New("fit ridge: no samples")
	}
	if len(y) != n {
		return nil, fmt.Errorf("fit ridge: %d samples but %d targets", n, len(y))
	}
	if alpha < 0 {
		return nil, fmt.Errorf("fit ridge: alpha must be >= 0, got %v", alpha)
	}

	p := len(x[0]) + 1
	design := mat.NewDense(n, p, nil)
	for i, row := range x {
		if len(row) != p-1 {
			return nil, fmt.Errorf("fit ridge: row %d has %d features, want %d", i, len(row), p-1)
		}
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var gram mat.Dense
	gram.Mul(design.T(), design)
	for j := 1; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+alpha)
	}

	var moment mat.VecDense
	moment.MulVec(design.T(), target)

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &moment); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("fit ridge: solve normal equations: %w", err)
		}
		log.WithField("condition", float64(cond)).Warn("normal equations are ill-conditioned")
	}

	coef := make([]float64, p-1)
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	return &LinearRegression{Intercept: beta.AtVec(0), Coefficients: coef}, nil
}

// Predict returns one estimate per feature vector.
func (m *LinearRegression) Predict(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(m.Coefficients) {
			return nil, fmt.Errorf("predict: row %d has %d features, want %d", i, len(row), len(m.Coefficients))
		}
		v := m.Intercept
		for j, c := range m.Coefficients {
			v += c * row[j]
		}
		out[i] = v
	}
	return out, nil
}
