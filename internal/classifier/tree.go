package classifier

import (
	"math/rand"
	"sort"
)

// Node is one decision-tree node. Interior nodes route on a single
// feature threshold; leaves carry the majority class index.
type Node struct {
	Left      *Node
	Right     *Node
	Threshold float64
	Feature   int
	Pred      int
	Leaf      bool
}

func (n *Node) route(x []float64) int {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Pred
}

// treeParams bound the growth of one classification tree.
type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // features sampled per split; 0 means all
}

// growTree fits a CART classification tree by Gini impurity on the
// sample indices in idx. y holds dense class indices in [0, numClasses).
func growTree(X [][]float64, y []int, idx []int, numClasses int, p treeParams, rng *rand.Rand) *Node {
	return growNode(X, y, idx, numClasses, p, rng, 0)
}

func growNode(X [][]float64, y []int, idx []int, numClasses int, p treeParams, rng *rand.Rand, depth int) *Node {
	counts := make([]int, numClasses)
	for _, i := range idx {
		counts[y[i]]++
	}
	pred, pure := majority(counts)

	if pure ||
		len(idx) < p.minSamplesSplit ||
		(p.maxDepth > 0 && depth >= p.maxDepth) {
		return &Node{Leaf: true, Pred: pred}
	}

	feature, threshold, ok := bestGiniSplit(X, y, idx, counts, numClasses, p, rng)
	if !ok {
		return &Node{Leaf: true, Pred: pred}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minSamplesLeaf || len(right) < p.minSamplesLeaf {
		return &Node{Leaf: true, Pred: pred}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      growNode(X, y, left, numClasses, p, rng, depth+1),
		Right:     growNode(X, y, right, numClasses, p, rng, depth+1),
	}
}

// majority returns the most frequent class index and whether the node
// is pure. Ties break toward the smaller index.
func majority(counts []int) (int, bool) {
	best, bestN, total, nonZero := 0, -1, 0, 0
	for c, n := range counts {
		total += n
		if n > 0 {
			nonZero++
		}
		if n > bestN {
			best, bestN = c, n
		}
	}
	return best, nonZero <= 1 || total == 0
}

// bestGiniSplit scans a (possibly sampled) set of features for the
// threshold with the lowest weighted Gini impurity.
func bestGiniSplit(X [][]float64, y []int, idx, parentCounts []int, numClasses int, p treeParams, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(X[idx[0]])
	features := make([]int, numFeatures)
	for f := range features {
		features[f] = f
	}
	if p.maxFeatures > 0 && p.maxFeatures < numFeatures {
		rng.Shuffle(numFeatures, func(a, b int) {
			features[a], features[b] = features[b], features[a]
		})
		features = features[:p.maxFeatures]
	}

	n := len(idx)
	order := make([]int, n)
	leftCounts := make([]int, numClasses)
	rightCounts := make([]int, numClasses)

	bestImpurity := impurity(parentCounts, n)
	bestFeature, bestThreshold, found := -1, 0.0, false

	for _, f := range features {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][f] < X[order[b]][f]
		})

		for c := range leftCounts {
			leftCounts[c] = 0
			rightCounts[c] = parentCounts[c]
		}

		for split := 1; split < n; split++ {
			moved := order[split-1]
			leftCounts[y[moved]]++
			rightCounts[y[moved]]--

			prev, cur := X[moved][f], X[order[split]][f]
			if prev == cur {
				continue
			}
			if split < p.minSamplesLeaf || n-split < p.minSamplesLeaf {
				continue
			}

			w := (impurity(leftCounts, split)*float64(split) +
				impurity(rightCounts, n-split)*float64(n-split)) / float64(n)
			if w < bestImpurity {
				bestImpurity = w
				bestFeature = f
				bestThreshold = (prev + cur) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func impurity(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}
