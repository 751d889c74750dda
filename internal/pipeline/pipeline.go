// Package pipeline couples one fitted feature transform with one
// fitted classifier. A pipeline is the unit the training run persists
// and the inference service loads; it is immutable once fitted.
package pipeline

import (
	"fmt"

	"github.com/despesalab/categorizer/internal/classifier"
	"github.com/despesalab/categorizer/internal/common"
	"github.com/despesalab/categorizer/internal/expense"
	"github.com/despesalab/categorizer/internal/feature"
)

// Pipeline is a fitted feature transform plus a fitted classifier.
type Pipeline struct {
	Transform *feature.Transform
	Model     classifier.Trainable
	Name      string
}

// New wires an unfit transform to an unfit classifier.
func New(name string, transform *feature.Transform, model classifier.Trainable) *Pipeline {
	return &Pipeline{
		Name:      name,
		Transform: transform,
		Model:     model,
	}
}

// Fit fits the transform on the training records, then the classifier
// on the transformed rows.
func (p *Pipeline) Fit(rows []expense.Labeled) error {
	if len(rows) == 0 {
		return fmt.Errorf("cannot fit pipeline on empty training data")
	}

	records := expense.Records(rows)
	if err := p.Transform.Fit(records); err != nil {
		return fmt.Errorf("failed to fit transform: %w", err)
	}

	X, err := p.Transform.Apply(records)
	if err != nil {
		return fmt.Errorf("failed to transform training data: %w", err)
	}

	if err := p.Model.Fit(X, expense.Labels(rows)); err != nil {
		return fmt.Errorf("failed to fit %s: %w", p.Name, err)
	}
	return nil
}

// Predict maps records through the fitted transform and classifier in
// one batched call. An empty input returns an empty output without
// touching the model.
func (p *Pipeline) Predict(rows []expense.Record) ([]int, error) {
	if len(rows) == 0 {
		return []int{}, nil
	}
	if p.Transform == nil || !p.Transform.Fitted() {
		return nil, fmt.Errorf("%w: pipeline is not fitted", common.ErrPredictionFailed)
	}

	X, err := p.Transform.Apply(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPredictionFailed, err)
	}
	labels, err := p.Model.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPredictionFailed, err)
	}
	return labels, nil
}
