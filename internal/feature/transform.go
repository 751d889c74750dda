package feature

import (
	"fmt"

	"github.com/despesalab/categorizer/internal/expense"
)

// Transform is the shared preprocessor every candidate pipeline wraps:
// TF-IDF over the description concatenated with the standardized
// amount. It is fit exactly once, on training data, and its fitted
// state is reused verbatim for every prediction thereafter.
type Transform struct {
	Text   *Vectorizer
	Amount *Scaler
}

// NewTransform returns an unfit transform with the catalog settings.
func NewTransform() *Transform {
	return &Transform{
		Text:   NewVectorizer(),
		Amount: &Scaler{},
	}
}

// Fitted reports whether Fit has been called.
func (t *Transform) Fitted() bool {
	return t.Text != nil && t.Text.Fitted()
}

// Width returns the width of the produced feature vectors.
func (t *Transform) Width() int {
	return t.Text.Width() + 1
}

// Fit learns the vocabulary, IDF weights and scaling statistics from
// the training records.
func (t *Transform) Fit(rows []expense.Record) error {
	if len(rows) == 0 {
		return fmt.Errorf("cannot fit transform on empty training data")
	}

	docs := make([]string, len(rows))
	amounts := make([]float64, len(rows))
	for i, r := range rows {
		docs[i] = r.Name
		amounts[i] = r.AmountCents
	}

	if err := t.Text.Fit(docs); err != nil {
		return err
	}
	return t.Amount.Fit(amounts)
}

// Apply maps records to feature vectors using the fitted state. The
// output row shape is identical for training and inference.
func (t *Transform) Apply(rows []expense.Record) ([][]float64, error) {
	if !t.Fitted() {
		return nil, fmt.Errorf("transform is not fitted")
	}

	out := make([][]float64, len(rows))
	for i, r := range rows {
		text := t.Text.Transform(r.Name)
		vec := make([]float64, len(text)+1)
		copy(vec, text)
		vec[len(text)] = t.Amount.Transform(r.AmountCents)
		out[i] = vec
	}
	return out, nil
}
