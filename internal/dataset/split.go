package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/despesalab/categorizer/internal/expense"
)

// Split is a stratified train/validation partition of a labeled
// dataset.
type Split struct {
	Train []expense.Labeled
	Val   []expense.Labeled
}

// StratifiedSplit partitions rows into train and validation sets,
// preserving per-label proportions. Labels with fewer than two
// examples cannot be stratified and are placed entirely in the
// training set. The split is deterministic for a given seed.
func StratifiedSplit(rows []expense.Labeled, valFraction float64, seed int64) (Split, error) {
	if valFraction <= 0 || valFraction >= 1 {
		return Split{}, fmt.Errorf("validation fraction must be in (0, 1), got %v", valFraction)
	}

	byLabel := make(map[int][]int)
	for i, r := range rows {
		byLabel[r.CategoryID] = append(byLabel[r.CategoryID], i)
	}

	// Iterate labels in sorted order so the only source of
	// randomness is the seeded shuffle.
	labels := make([]int, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	rng := rand.New(rand.NewSource(seed))

	var split Split
	for _, label := range labels {
		idx := byLabel[label]
		if len(idx) < 2 {
			// Singleton labels go to training only.
			for _, i := range idx {
				split.Train = append(split.Train, rows[i])
			}
			continue
		}

		shuffled := make([]int, len(idx))
		copy(shuffled, idx)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		nVal := int(math.Round(float64(len(shuffled)) * valFraction))
		if nVal < 1 {
			nVal = 1
		}
		if nVal >= len(shuffled) {
			nVal = len(shuffled) - 1
		}

		for _, i := range shuffled[:nVal] {
			split.Val = append(split.Val, rows[i])
		}
		for _, i := range shuffled[nVal:] {
			split.Train = append(split.Train, rows[i])
		}
	}

	if len(split.Train) == 0 {
		return Split{}, fmt.Errorf("no training rows after split (dataset has %d rows)", len(rows))
	}

	// A final shuffle so training order does not group by label.
	rng.Shuffle(len(split.Train), func(a, b int) {
		split.Train[a], split.Train[b] = split.Train[b], split.Train[a]
	})

	return split, nil
}
