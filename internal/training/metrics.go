// Package training runs the offline model comparison: it fits every
// catalog candidate on a stratified split, scores it on held-out data
// and persists the winner.
package training

import (
	"fmt"
	"sort"
)

// Accuracy is the fraction of predictions matching the true labels.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("label length mismatch: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("cannot score empty labels")
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// F1Macro averages per-class F1 scores with equal class weight.
func F1Macro(yTrue, yPred []int) (float64, error) {
	return f1Average(yTrue, yPred, false)
}

// F1Weighted averages per-class F1 scores weighted by true-label
// support.
func F1Weighted(yTrue, yPred []int) (float64, error) {
	return f1Average(yTrue, yPred, true)
}

func f1Average(yTrue, yPred []int, weighted bool) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("label length mismatch: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("cannot score empty labels")
	}

	// Score over every label seen in either the truth or the
	// predictions; absent classes contribute zero F1.
	seen := make(map[int]struct{})
	for i := range yTrue {
		seen[yTrue[i]] = struct{}{}
		seen[yPred[i]] = struct{}{}
	}
	labels := make([]int, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	var sum, weightSum float64
	for _, label := range labels {
		var tp, fp, fn, support float64
		for i := range yTrue {
			if yTrue[i] == label {
				support++
				if yPred[i] == label {
					tp++
				} else {
					fn++
				}
			} else if yPred[i] == label {
				fp++
			}
		}

		var f1 float64
		if 2*tp+fp+fn > 0 {
			f1 = 2 * tp / (2*tp + fp + fn)
		}

		if weighted {
			sum += f1 * support
			weightSum += support
		} else {
			sum += f1
			weightSum++
		}
	}

	if weightSum == 0 {
		return 0, nil
	}
	return sum / weightSum, nil
}
