package classifier

import (
	"fmt"
	"math"
)

// GradientBoosting is a multiclass gradient-boosted ensemble of
// regression trees fit to softmax residuals, one tree per class per
// stage.
type GradientBoosting struct {
	Stages       [][]*RegNode // [stage][class]
	Priors       []float64
	Classes      []int
	NumStages    int
	MaxDepth     int
	LearningRate float64
}

// NewGradientBoosting returns an unfit ensemble with the catalog
// settings: 100 stages, depth 5, learning rate 0.1.
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{
		NumStages:    100,
		MaxDepth:     5,
		LearningRate: 0.1,
	}
}

// Fit grows the staged ensemble on the training rows.
func (g *GradientBoosting) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d labels", len(X), len(y))
	}

	codec := FitLabels(y)
	g.Classes = codec.Classes
	encoded, err := codec.Encode(y)
	if err != nil {
		return err
	}

	n, k := len(X), len(g.Classes)
	if k < 2 {
		// Degenerate single-class data: the prior decides everything.
		g.Priors = []float64{0}
		g.Stages = nil
		return nil
	}

	// Initialize scores with class log-priors.
	g.Priors = make([]float64, k)
	counts := make([]float64, k)
	for _, c := range encoded {
		counts[c]++
	}
	for c := range g.Priors {
		if counts[c] > 0 {
			g.Priors[c] = math.Log(counts[c] / float64(n))
		} else {
			g.Priors[c] = math.Inf(-1)
		}
	}

	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, k)
		copy(scores[i], g.Priors)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	residual := make([]float64, n)
	g.Stages = make([][]*RegNode, 0, g.NumStages)
	for stage := 0; stage < g.NumStages; stage++ {
		trees := make([]*RegNode, k)
		probs := softmaxRows(scores)

		for c := 0; c < k; c++ {
			for i := 0; i < n; i++ {
				target := 0.0
				if encoded[i] == c {
					target = 1.0
				}
				residual[i] = target - probs[i][c]
			}

			trees[c] = growRegTree(X, residual, idx, g.MaxDepth, 1, func(leaf []int) float64 {
				return multiclassLeafValue(residual, leaf, k)
			})

			for i := 0; i < n; i++ {
				scores[i][c] += g.LearningRate * trees[c].eval(X[i])
			}
		}

		g.Stages = append(g.Stages, trees)
	}

	return nil
}

// Predict returns the argmax-score label for each row.
func (g *GradientBoosting) Predict(X [][]float64) ([]int, error) {
	if g.Priors == nil {
		return nil, fmt.Errorf("gradient boosting is not fitted")
	}

	out := make([]int, len(X))
	for i, x := range X {
		if len(g.Classes) == 1 {
			out[i] = g.Classes[0]
			continue
		}
		best, bestScore := 0, math.Inf(-1)
		for c := range g.Classes {
			score := g.Priors[c]
			for _, trees := range g.Stages {
				score += g.LearningRate * trees[c].eval(x)
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		out[i] = g.Classes[best]
	}
	return out, nil
}

// multiclassLeafValue is the Newton-step leaf estimate for the softmax
// deviance loss.
func multiclassLeafValue(residual []float64, leaf []int, k int) float64 {
	var num, den float64
	for _, i := range leaf {
		r := residual[i]
		num += r
		den += math.Abs(r) * (1 - math.Abs(r))
	}
	if den < 1e-12 {
		return 0
	}
	return float64(k-1) / float64(k) * num / den
}

func softmaxRows(scores [][]float64) [][]float64 {
	out := make([][]float64, len(scores))
	for i, row := range scores {
		out[i] = softmax(row)
	}
	return out
}

func softmax(row []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, v := range row {
		if v > maxScore {
			maxScore = v
		}
	}
	out := make([]float64, len(row))
	var sum float64
	for c, v := range row {
		out[c] = math.Exp(v - maxScore)
		sum += out[c]
	}
	for c := range out {
		out[c] /= sum
	}
	return out
}
