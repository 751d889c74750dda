package classifier

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KNN is a k-nearest-neighbor classifier over Euclidean distance.
// Fitting just memorizes the training rows; voting ties break toward
// the smaller label.
type KNN struct {
	TrainX [][]float64
	TrainY []int
	K      int
}

// NewKNN returns an unfit classifier with the catalog setting k=5.
func NewKNN() *KNN {
	return &KNN{K: 5}
}

// Fit memorizes the training rows.
func (k *KNN) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d labels", len(X), len(y))
	}
	k.TrainX = X
	k.TrainY = y
	return nil
}

// Predict votes among the k nearest training rows for each input row.
func (k *KNN) Predict(X [][]float64) ([]int, error) {
	if len(k.TrainX) == 0 {
		return nil, fmt.Errorf("knn is not fitted")
	}

	neighbors := k.K
	if neighbors > len(k.TrainX) {
		neighbors = len(k.TrainX)
	}

	out := make([]int, len(X))
	dist := make([]float64, len(k.TrainX))
	order := make([]int, len(k.TrainX))
	for i, x := range X {
		for j, t := range k.TrainX {
			dist[j] = floats.Distance(x, t, 2)
			order[j] = j
		}
		sort.Slice(order, func(a, b int) bool {
			if dist[order[a]] != dist[order[b]] {
				return dist[order[a]] < dist[order[b]]
			}
			return order[a] < order[b]
		})

		votes := make(map[int]int, neighbors)
		for _, j := range order[:neighbors] {
			votes[k.TrainY[j]]++
		}

		best, bestN := 0, -1
		for label, n := range votes {
			if n > bestN || (n == bestN && label < best) {
				best, bestN = label, n
			}
		}
		out[i] = best
	}
	return out, nil
}
