package classifier

import "sort"

// RegNode is one regression-tree node used by the boosting ensembles.
type RegNode struct {
	Left      *RegNode
	Right     *RegNode
	Threshold float64
	Value     float64
	Feature   int
	Leaf      bool
}

func (n *RegNode) eval(x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// growRegTree fits a least-squares regression tree to target over the
// sample indices in idx. leafValue computes the value stored at each
// leaf from the samples that reach it, letting boosting variants apply
// their own leaf estimates.
func growRegTree(X [][]float64, target []float64, idx []int, maxDepth, minSamplesLeaf int, leafValue func(idx []int) float64) *RegNode {
	return growRegNode(X, target, idx, maxDepth, minSamplesLeaf, leafValue, 0)
}

func growRegNode(X [][]float64, target []float64, idx []int, maxDepth, minSamplesLeaf int, leafValue func(idx []int) float64, depth int) *RegNode {
	if len(idx) < 2*minSamplesLeaf || (maxDepth > 0 && depth >= maxDepth) || constantTarget(target, idx) {
		return &RegNode{Leaf: true, Value: leafValue(idx)}
	}

	feature, threshold, ok := bestMSESplit(X, target, idx, minSamplesLeaf)
	if !ok {
		return &RegNode{Leaf: true, Value: leafValue(idx)}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minSamplesLeaf || len(right) < minSamplesLeaf {
		return &RegNode{Leaf: true, Value: leafValue(idx)}
	}

	return &RegNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growRegNode(X, target, left, maxDepth, minSamplesLeaf, leafValue, depth+1),
		Right:     growRegNode(X, target, right, maxDepth, minSamplesLeaf, leafValue, depth+1),
	}
}

func constantTarget(target []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if target[i] != target[idx[0]] {
			return false
		}
	}
	return true
}

// bestMSESplit minimizes the summed squared error of the two sides,
// equivalent to maximizing sum²/count on each side.
func bestMSESplit(X [][]float64, target []float64, idx []int, minSamplesLeaf int) (int, float64, bool) {
	n := len(idx)
	numFeatures := len(X[idx[0]])

	var total float64
	for _, i := range idx {
		total += target[i]
	}
	parentScore := total * total / float64(n)

	order := make([]int, n)
	bestGain := 1e-12
	bestFeature, bestThreshold, found := -1, 0.0, false

	for f := 0; f < numFeatures; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][f] < X[order[b]][f]
		})

		var leftSum float64
		for split := 1; split < n; split++ {
			leftSum += target[order[split-1]]

			prev, cur := X[order[split-1]][f], X[order[split]][f]
			if prev == cur {
				continue
			}
			if split < minSamplesLeaf || n-split < minSamplesLeaf {
				continue
			}

			rightSum := total - leftSum
			score := leftSum*leftSum/float64(split) + rightSum*rightSum/float64(n-split)
			if gain := score - parentScore; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (prev + cur) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}
