package ml

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// R2Score is the coefficient of determination of estimates against values.
// A constant target scores 1 for a perfect fit and 0 otherwise.
func R2Score(values, estimates []float64) (float64, error) {
	if len(values) != len(estimates) {
		return 0, fmt.Errorf("r2 score: %d values but %d estimates", len(values), len(estimates))
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("r2 score: no values")
	}

	if len(values) < 2 || stat.Variance(values, nil) == 0 {
		for i := range values {
			if values[i] != estimates[i] {
				return 0, nil
			}
		}
		return 1, nil
	}
	return stat.RSquaredFrom(estimates, values, nil), nil
}
