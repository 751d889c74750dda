package training

import (
	"github.com/despesalab/categorizer/internal/classifier"
	"github.com/despesalab/categorizer/internal/feature"
	"github.com/despesalab/categorizer/internal/pipeline"
)

// Capabilities gates the optional boosted-tree variants. It is
// resolved once at process start from configuration; the candidate
// list is computed from these flags, never probed at call time.
type Capabilities struct {
	RegularizedBoosting bool
	HistogramBoosting   bool
}

// Candidate is one untrained catalog entry.
type Candidate struct {
	Pipeline *pipeline.Pipeline
	Name     string
}

// Candidates builds the fixed catalog: each entry pairs a fresh feature
// transform with an untrained classifier. Order is the comparison
// order; every classifier is deterministic for the given seed.
func Candidates(caps Capabilities, seed int64) []Candidate {
	cands := []Candidate{
		newCandidate("Random Forest", classifier.NewRandomForest(seed)),
		newCandidate("Gradient Boosting", classifier.NewGradientBoosting()),
		newCandidate("Logistic Regression", classifier.NewLogistic()),
		newCandidate("SVM (RBF)", classifier.NewSVM(seed)),
		newCandidate("K-Nearest Neighbors", classifier.NewKNN()),
	}

	// The boosted variants need dense zero-based labels, so they train
	// behind a label codec; predictions come back in the original
	// label space before scoring.
	if caps.RegularizedBoosting {
		cands = append(cands, newCandidate("Boosted Trees (Exact)",
			classifier.WithEncodedLabels(classifier.NewBoosted(false))))
	}
	if caps.HistogramBoosting {
		cands = append(cands, newCandidate("Boosted Trees (Histogram)",
			classifier.WithEncodedLabels(classifier.NewBoosted(true))))
	}

	return cands
}

func newCandidate(name string, model classifier.Trainable) Candidate {
	return Candidate{
		Name:     name,
		Pipeline: pipeline.New(name, feature.NewTransform(), model),
	}
}
