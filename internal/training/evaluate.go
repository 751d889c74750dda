package training

import (
	"fmt"
	"time"

	"github.com/despesalab/categorizer/internal/common"
	"github.com/despesalab/categorizer/internal/dataset"
	"github.com/despesalab/categorizer/internal/expense"
	"github.com/despesalab/categorizer/internal/pipeline"
)

// EvaluationResult is one candidate's held-out performance.
type EvaluationResult struct {
	Pipeline   *pipeline.Pipeline
	Name       string
	Accuracy   float64
	F1Macro    float64
	F1Weighted float64
	Duration   time.Duration
}

// Evaluate fits one candidate on the training split and scores it on
// the validation split. Metrics are always computed against the
// original label values.
func Evaluate(cand Candidate, split dataset.Split) (EvaluationResult, error) {
	if len(split.Val) == 0 {
		return EvaluationResult{}, fmt.Errorf("validation split is empty")
	}

	start := time.Now()
	if err := cand.Pipeline.Fit(split.Train); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: %s: %v", common.ErrTrainingFailed, cand.Name, err)
	}
	duration := time.Since(start)

	predicted, err := cand.Pipeline.Predict(expense.Records(split.Val))
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("failed to predict with %s: %w", cand.Name, err)
	}

	truth := expense.Labels(split.Val)
	accuracy, err := Accuracy(truth, predicted)
	if err != nil {
		return EvaluationResult{}, err
	}
	macro, err := F1Macro(truth, predicted)
	if err != nil {
		return EvaluationResult{}, err
	}
	weighted, err := F1Weighted(truth, predicted)
	if err != nil {
		return EvaluationResult{}, err
	}

	return EvaluationResult{
		Pipeline:   cand.Pipeline,
		Name:       cand.Name,
		Accuracy:   accuracy,
		F1Macro:    macro,
		F1Weighted: weighted,
		Duration:   duration,
	}, nil
}
