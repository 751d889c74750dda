package classifier

import (
	"fmt"
	"math"
	"math/rand"
)

// RandomForest is a bagged ensemble of Gini decision trees with
// per-split feature sampling. Predictions are the majority vote over
// the trees, ties broken toward the smaller label.
type RandomForest struct {
	Trees           []*Node
	Classes         []int
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Seed            int64
}

// NewRandomForest returns an unfit forest with the catalog settings.
func NewRandomForest(seed int64) *RandomForest {
	return &RandomForest{
		NumTrees:        200,
		MaxDepth:        20,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
		Seed:            seed,
	}
}

// Fit grows the ensemble on bootstrap samples of the training rows.
func (f *RandomForest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d labels", len(X), len(y))
	}

	codec := FitLabels(y)
	f.Classes = codec.Classes
	encoded, err := codec.Encode(y)
	if err != nil {
		return err
	}

	params := treeParams{
		maxDepth:        f.MaxDepth,
		minSamplesSplit: f.MinSamplesSplit,
		minSamplesLeaf:  f.MinSamplesLeaf,
		maxFeatures:     int(math.Ceil(math.Sqrt(float64(len(X[0]))))),
	}

	rng := rand.New(rand.NewSource(f.Seed))
	n := len(X)
	f.Trees = make([]*Node, f.NumTrees)
	for t := range f.Trees {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.Trees[t] = growTree(X, encoded, sample, len(f.Classes), params, rng)
	}

	return nil
}

// Predict returns the majority-vote label for each row.
func (f *RandomForest) Predict(X [][]float64) ([]int, error) {
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("random forest is not fitted")
	}

	out := make([]int, len(X))
	votes := make([]int, len(f.Classes))
	for i, x := range X {
		for c := range votes {
			votes[c] = 0
		}
		for _, tree := range f.Trees {
			votes[tree.route(x)]++
		}
		best := 0
		for c := 1; c < len(votes); c++ {
			if votes[c] > votes[best] {
				best = c
			}
		}
		out[i] = f.Classes[best]
	}
	return out, nil
}
