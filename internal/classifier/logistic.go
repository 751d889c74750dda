package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Logistic is a multinomial logistic regression fit by batch gradient
// descent on the softmax cross-entropy with a small L2 penalty. The
// optimization is deterministic: weights start at zero and the data
// order does not matter.
type Logistic struct {
	Weights      []float64 // row-major (features+1) x classes, bias last row
	Classes      []int
	Features     int
	MaxIter      int
	LearningRate float64
	L2           float64
}

// NewLogistic returns an unfit model with the catalog settings.
func NewLogistic() *Logistic {
	return &Logistic{
		MaxIter:      1000,
		LearningRate: 0.5,
		L2:           1e-4,
	}
}

// Fit estimates the weight matrix from the training rows.
func (l *Logistic) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d labels", len(X), len(y))
	}

	codec := FitLabels(y)
	l.Classes = codec.Classes
	encoded, err := codec.Encode(y)
	if err != nil {
		return err
	}

	n := len(X)
	l.Features = len(X[0])
	d, k := l.Features+1, len(l.Classes)

	// Design matrix with a trailing bias column of ones.
	data := make([]float64, n*d)
	for i, x := range X {
		copy(data[i*d:], x)
		data[i*d+d-1] = 1
	}
	design := mat.NewDense(n, d, data)

	onehot := mat.NewDense(n, k, nil)
	for i, c := range encoded {
		onehot.Set(i, c, 1)
	}

	weights := mat.NewDense(d, k, nil)
	scores := mat.NewDense(n, k, nil)
	grad := mat.NewDense(d, k, nil)

	// Bound the step by the squared data scale so fixed-step descent
	// stays stable on unnormalized features.
	var maxSq float64
	for i := 0; i < n; i++ {
		var sq float64
		for _, v := range data[i*d : (i+1)*d] {
			sq += v * v
		}
		if sq > maxSq {
			maxSq = sq
		}
	}
	step := l.LearningRate
	if maxSq > 4 {
		step = l.LearningRate * 4 / maxSq
	}

	for iter := 0; iter < l.MaxIter; iter++ {
		scores.Mul(design, weights)
		for i := 0; i < n; i++ {
			row := softmax(scores.RawRowView(i))
			for c := 0; c < k; c++ {
				scores.Set(i, c, row[c]-onehot.At(i, c))
			}
		}

		grad.Mul(design.T(), scores)
		grad.Scale(1/float64(n), grad)

		var penalty mat.Dense
		penalty.Scale(l.L2, weights)
		grad.Add(grad, &penalty)

		grad.Scale(step, grad)
		weights.Sub(weights, grad)
	}

	l.Weights = make([]float64, d*k)
	copy(l.Weights, weights.RawMatrix().Data)
	return nil
}

// Predict returns the argmax-score label for each row.
func (l *Logistic) Predict(X [][]float64) ([]int, error) {
	if l.Weights == nil {
		return nil, fmt.Errorf("logistic regression is not fitted")
	}

	d, k := l.Features+1, len(l.Classes)
	weights := mat.NewDense(d, k, l.Weights)

	out := make([]int, len(X))
	xRow := mat.NewDense(1, d, nil)
	scores := mat.NewDense(1, k, nil)
	for i, x := range X {
		if len(x) != l.Features {
			return nil, fmt.Errorf("feature width %d does not match fitted width %d", len(x), l.Features)
		}
		for f, v := range x {
			xRow.Set(0, f, v)
		}
		xRow.Set(0, d-1, 1)
		scores.Mul(xRow, weights)

		best, bestScore := 0, math.Inf(-1)
		for c := 0; c < k; c++ {
			if s := scores.At(0, c); s > bestScore {
				best, bestScore = c, s
			}
		}
		out[i] = l.Classes[best]
	}
	return out, nil
}
