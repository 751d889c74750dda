package classifier

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// SVM is a one-vs-one RBF-kernel support vector machine trained with
// sequential minimal optimization. Each class pair gets one binary
// machine; prediction is the pairwise vote, ties toward the smaller
// label.
type SVM struct {
	Machines  []*BinarySVM
	Classes   []int
	C         float64
	Gamma     float64 // resolved at fit time from the data scale
	Tol       float64
	MaxPasses int
	Seed      int64
}

// BinarySVM is one fitted pairwise machine. Coef holds alpha*y per
// support vector.
type BinarySVM struct {
	SupportX [][]float64
	Coef     []float64
	B        float64
	Pos      int // index into Classes voted on a positive decision
	Neg      int
}

// NewSVM returns an unfit machine with the catalog settings.
func NewSVM(seed int64) *SVM {
	return &SVM{
		C:         1.0,
		Tol:       1e-3,
		MaxPasses: 10,
		Seed:      seed,
	}
}

// Fit trains one SMO machine per class pair.
func (s *SVM) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d labels", len(X), len(y))
	}

	codec := FitLabels(y)
	s.Classes = codec.Classes
	encoded, err := codec.Encode(y)
	if err != nil {
		return err
	}

	s.Gamma = scaleGamma(X)
	rng := rand.New(rand.NewSource(s.Seed))

	s.Machines = nil
	for a := 0; a < len(s.Classes); a++ {
		for b := a + 1; b < len(s.Classes); b++ {
			var pairX [][]float64
			var pairY []float64
			for i, c := range encoded {
				switch c {
				case a:
					pairX = append(pairX, X[i])
					pairY = append(pairY, 1)
				case b:
					pairX = append(pairX, X[i])
					pairY = append(pairY, -1)
				}
			}
			m := s.fitBinary(pairX, pairY, rng)
			m.Pos, m.Neg = a, b
			s.Machines = append(s.Machines, m)
		}
	}

	return nil
}

// Predict returns the pairwise-vote label for each row.
func (s *SVM) Predict(X [][]float64) ([]int, error) {
	if s.Classes == nil {
		return nil, fmt.Errorf("svm is not fitted")
	}

	out := make([]int, len(X))
	votes := make([]int, len(s.Classes))
	for i, x := range X {
		for c := range votes {
			votes[c] = 0
		}
		for _, m := range s.Machines {
			if m.decision(x, s.Gamma) > 0 {
				votes[m.Pos]++
			} else {
				votes[m.Neg]++
			}
		}
		best := 0
		for c := 1; c < len(votes); c++ {
			if votes[c] > votes[best] {
				best = c
			}
		}
		out[i] = s.Classes[best]
	}
	return out, nil
}

func (m *BinarySVM) decision(x []float64, gamma float64) float64 {
	sum := m.B
	for i, sv := range m.SupportX {
		sum += m.Coef[i] * rbf(sv, x, gamma)
	}
	return sum
}

// fitBinary runs simplified SMO over one class pair.
func (s *SVM) fitBinary(X [][]float64, y []float64, rng *rand.Rand) *BinarySVM {
	n := len(X)
	alpha := make([]float64, n)
	b := 0.0

	kernel := make([][]float64, n)
	for i := range kernel {
		kernel[i] = make([]float64, n)
		for j := range kernel[i] {
			kernel[i][j] = rbf(X[i], X[j], s.Gamma)
		}
	}

	f := func(i int) float64 {
		sum := b
		for j := 0; j < n; j++ {
			if alpha[j] > 0 {
				sum += alpha[j] * y[j] * kernel[j][i]
			}
		}
		return sum
	}

	for passes := 0; passes < s.MaxPasses; {
		changed := 0
		for i := 0; i < n; i++ {
			ei := f(i) - y[i]
			if !((y[i]*ei < -s.Tol && alpha[i] < s.C) || (y[i]*ei > s.Tol && alpha[i] > 0)) {
				continue
			}

			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ej := f(j) - y[j]

			oldI, oldJ := alpha[i], alpha[j]
			var lo, hi float64
			if y[i] != y[j] {
				lo = math.Max(0, oldJ-oldI)
				hi = math.Min(s.C, s.C+oldJ-oldI)
			} else {
				lo = math.Max(0, oldI+oldJ-s.C)
				hi = math.Min(s.C, oldI+oldJ)
			}
			if lo == hi {
				continue
			}

			eta := 2*kernel[i][j] - kernel[i][i] - kernel[j][j]
			if eta >= 0 {
				continue
			}

			alpha[j] = oldJ - y[j]*(ei-ej)/eta
			alpha[j] = math.Min(hi, math.Max(lo, alpha[j]))
			if math.Abs(alpha[j]-oldJ) < 1e-5 {
				alpha[j] = oldJ
				continue
			}
			alpha[i] = oldI + y[i]*y[j]*(oldJ-alpha[j])

			b1 := b - ei - y[i]*(alpha[i]-oldI)*kernel[i][i] - y[j]*(alpha[j]-oldJ)*kernel[i][j]
			b2 := b - ej - y[i]*(alpha[i]-oldI)*kernel[i][j] - y[j]*(alpha[j]-oldJ)*kernel[j][j]
			switch {
			case alpha[i] > 0 && alpha[i] < s.C:
				b = b1
			case alpha[j] > 0 && alpha[j] < s.C:
				b = b2
			default:
				b = (b1 + b2) / 2
			}

			changed++
		}
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	m := &BinarySVM{B: b}
	for i := 0; i < n; i++ {
		if alpha[i] > 1e-8 {
			m.SupportX = append(m.SupportX, X[i])
			m.Coef = append(m.Coef, alpha[i]*y[i])
		}
	}
	return m
}

func rbf(a, b []float64, gamma float64) float64 {
	var d2 float64
	for i := range a {
		d := a[i] - b[i]
		d2 += d * d
	}
	return math.Exp(-gamma * d2)
}

// scaleGamma mirrors the "scale" heuristic: 1 / (n_features * var(X)).
func scaleGamma(X [][]float64) float64 {
	all := make([]float64, 0, len(X)*len(X[0]))
	for _, row := range X {
		all = append(all, row...)
	}
	v := stat.PopVariance(all, nil)
	if v <= 0 {
		v = 1
	}
	return 1 / (float64(len(X[0])) * v)
}
