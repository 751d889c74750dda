package feature

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes a numeric feature to zero mean and unit variance
// using statistics computed once from training data.
type Scaler struct {
	Mean   float64
	StdDev float64
}

// Fit computes the training-set mean and population standard deviation.
func (s *Scaler) Fit(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("cannot fit scaler on empty values")
	}

	s.Mean = stat.Mean(values, nil)
	s.StdDev = stat.PopStdDev(values, nil)
	return nil
}

// Transform standardizes one value with the fitted statistics. A
// constant training column (zero deviation) passes values through
// centered only.
func (s *Scaler) Transform(v float64) float64 {
	if s.StdDev == 0 {
		return v - s.Mean
	}
	return (v - s.Mean) / s.StdDev
}
