package classifier

import (
	"fmt"
	"math"
	"sort"
)

// Boosted is the second-order boosted-tree family behind the two
// optional catalog entries: the exact-split variant scans every
// threshold, the histogram variant bins features once and scans bin
// boundaries. Both require dense zero-based labels; the model bank
// wraps them with a label codec.
type Boosted struct {
	Stages       [][]*RegNode // [stage][class]
	Edges        [][]float64  // per-feature bin edges, histogram only
	NumClasses   int
	NumStages    int
	MaxDepth     int
	MaxBins      int
	LearningRate float64
	Lambda       float64
	Histogram    bool
}

// NewBoosted returns an unfit booster: 100 stages, depth 6, learning
// rate 0.1, L2 regularization 1.
func NewBoosted(histogram bool) *Boosted {
	return &Boosted{
		NumStages:    100,
		MaxDepth:     6,
		MaxBins:      255,
		LearningRate: 0.1,
		Lambda:       1.0,
		Histogram:    histogram,
	}
}

// Fit grows the staged ensemble. Labels must already be the dense
// encoding 0..k-1.
func (b *Boosted) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d labels", len(X), len(y))
	}

	k := 0
	for _, v := range y {
		if v < 0 {
			return fmt.Errorf("boosted variants require zero-based labels, got %d", v)
		}
		if v+1 > k {
			k = v + 1
		}
	}
	b.NumClasses = k
	if k < 2 {
		b.Stages = nil
		return nil
	}

	if b.Histogram {
		b.Edges = binEdges(X, b.MaxBins)
	}

	n := len(X)
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, k)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	b.Stages = make([][]*RegNode, 0, b.NumStages)
	for stage := 0; stage < b.NumStages; stage++ {
		trees := make([]*RegNode, k)
		probs := softmaxRows(scores)

		for c := 0; c < k; c++ {
			for i := 0; i < n; i++ {
				p := probs[i][c]
				target := 0.0
				if y[i] == c {
					target = 1.0
				}
				grad[i] = p - target
				hess[i] = p * (1 - p)
			}

			trees[c] = b.growGradNode(X, grad, hess, idx, 0)

			for i := 0; i < n; i++ {
				scores[i][c] += b.LearningRate * trees[c].eval(X[i])
			}
		}

		b.Stages = append(b.Stages, trees)
	}

	return nil
}

// Predict returns the argmax-score encoded label for each row.
func (b *Boosted) Predict(X [][]float64) ([]int, error) {
	if b.NumClasses == 0 {
		return nil, fmt.Errorf("boosted classifier is not fitted")
	}

	out := make([]int, len(X))
	for i, x := range X {
		if b.NumClasses == 1 {
			out[i] = 0
			continue
		}
		best, bestScore := 0, math.Inf(-1)
		for c := 0; c < b.NumClasses; c++ {
			var score float64
			for _, trees := range b.Stages {
				score += b.LearningRate * trees[c].eval(x)
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		out[i] = best
	}
	return out, nil
}

func (b *Boosted) growGradNode(X [][]float64, grad, hess []float64, idx []int, depth int) *RegNode {
	var sumG, sumH float64
	for _, i := range idx {
		sumG += grad[i]
		sumH += hess[i]
	}
	leaf := &RegNode{Leaf: true, Value: -sumG / (sumH + b.Lambda)}

	if len(idx) < 2 || (b.MaxDepth > 0 && depth >= b.MaxDepth) {
		return leaf
	}

	feature, threshold, ok := b.bestGradSplit(X, grad, hess, idx, sumG, sumH)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	return &RegNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.growGradNode(X, grad, hess, left, depth+1),
		Right:     b.growGradNode(X, grad, hess, right, depth+1),
	}
}

// bestGradSplit maximizes the second-order gain
// GL²/(HL+λ) + GR²/(HR+λ) − G²/(H+λ).
func (b *Boosted) bestGradSplit(X [][]float64, grad, hess []float64, idx []int, sumG, sumH float64) (int, float64, bool) {
	numFeatures := len(X[idx[0]])
	parentScore := sumG * sumG / (sumH + b.Lambda)

	bestGain := 1e-9
	bestFeature, bestThreshold, found := -1, 0.0, false

	consider := func(f int, threshold, gl, hl float64) {
		gr, hr := sumG-gl, sumH-hl
		gain := gl*gl/(hl+b.Lambda) + gr*gr/(hr+b.Lambda) - parentScore
		if gain > bestGain {
			bestGain = gain
			bestFeature = f
			bestThreshold = threshold
			found = true
		}
	}

	if b.Histogram {
		for f := 0; f < numFeatures; f++ {
			edges := b.Edges[f]
			if len(edges) == 0 {
				continue
			}
			binG := make([]float64, len(edges)+1)
			binH := make([]float64, len(edges)+1)
			for _, i := range idx {
				bin := sort.SearchFloat64s(edges, X[i][f])
				binG[bin] += grad[i]
				binH[bin] += hess[i]
			}
			var gl, hl float64
			for bin := 0; bin < len(edges); bin++ {
				gl += binG[bin]
				hl += binH[bin]
				consider(f, edges[bin], gl, hl)
			}
		}
		return bestFeature, bestThreshold, found
	}

	n := len(idx)
	order := make([]int, n)
	for f := 0; f < numFeatures; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool {
			return X[order[a]][f] < X[order[c]][f]
		})

		var gl, hl float64
		for split := 1; split < n; split++ {
			gl += grad[order[split-1]]
			hl += hess[order[split-1]]

			prev, cur := X[order[split-1]][f], X[order[split]][f]
			if prev == cur {
				continue
			}
			consider(f, (prev+cur)/2, gl, hl)
		}
	}
	return bestFeature, bestThreshold, found
}

// binEdges computes at most maxBins-1 quantile edges per feature from
// the distinct training values.
func binEdges(X [][]float64, maxBins int) [][]float64 {
	if len(X) == 0 {
		return nil
	}
	numFeatures := len(X[0])
	edges := make([][]float64, numFeatures)

	values := make([]float64, len(X))
	for f := 0; f < numFeatures; f++ {
		for i, x := range X {
			values[i] = x[f]
		}
		sort.Float64s(values)

		distinct := values[:0:0]
		for i, v := range values {
			if i == 0 || v != distinct[len(distinct)-1] {
				distinct = append(distinct, v)
			}
		}

		if len(distinct) < 2 {
			edges[f] = nil
			continue
		}

		// Edges sit between distinct values; cap at maxBins-1 by
		// taking evenly spaced quantiles.
		nEdges := len(distinct) - 1
		if nEdges > maxBins-1 {
			nEdges = maxBins - 1
		}
		fe := make([]float64, 0, nEdges)
		for e := 1; e <= nEdges; e++ {
			pos := e * (len(distinct) - 1) / (nEdges + 1)
			if pos+1 >= len(distinct) {
				pos = len(distinct) - 2
			}
			edge := (distinct[pos] + distinct[pos+1]) / 2
			if len(fe) == 0 || edge > fe[len(fe)-1] {
				fe = append(fe, edge)
			}
		}
		edges[f] = fe
	}
	return edges
}
