package classifier

import (
	"fmt"
	"sort"
)

// LabelCodec maps an arbitrary integer label space onto the dense
// zero-based encoding the boosted-tree variants require. The inverse
// mapping restores original label values, so metrics are always
// computed against the labels the dataset carries.
type LabelCodec struct {
	Classes []int // sorted original labels; index is the encoded value
}

// FitLabels builds a codec from the labels observed in training data.
func FitLabels(y []int) *LabelCodec {
	seen := make(map[int]struct{}, len(y))
	for _, v := range y {
		seen[v] = struct{}{}
	}
	classes := make([]int, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Ints(classes)
	return &LabelCodec{Classes: classes}
}

// Encode maps original labels to dense indices. Unknown labels are an
// error: the codec must have been fit on data containing them.
func (c *LabelCodec) Encode(y []int) ([]int, error) {
	index := make(map[int]int, len(c.Classes))
	for i, v := range c.Classes {
		index[v] = i
	}
	out := make([]int, len(y))
	for i, v := range y {
		enc, ok := index[v]
		if !ok {
			return nil, fmt.Errorf("label %d not seen during fit", v)
		}
		out[i] = enc
	}
	return out, nil
}

// Decode maps dense indices back to original labels.
func (c *LabelCodec) Decode(encoded []int) ([]int, error) {
	out := make([]int, len(encoded))
	for i, v := range encoded {
		if v < 0 || v >= len(c.Classes) {
			return nil, fmt.Errorf("encoded label %d out of range [0, %d)", v, len(c.Classes))
		}
		out[i] = c.Classes[v]
	}
	return out, nil
}

// Encoded wraps a trainable classifier that needs dense zero-based
// labels, encoding on fit and inverse-mapping on predict.
type Encoded struct {
	Inner Trainable
	Codec *LabelCodec
}

// WithEncodedLabels wraps inner with a label codec.
func WithEncodedLabels(inner Trainable) *Encoded {
	return &Encoded{Inner: inner}
}

// Fit encodes the labels and fits the inner classifier.
func (e *Encoded) Fit(X [][]float64, y []int) error {
	e.Codec = FitLabels(y)
	encoded, err := e.Codec.Encode(y)
	if err != nil {
		return err
	}
	return e.Inner.Fit(X, encoded)
}

// Predict predicts with the inner classifier and decodes the result.
func (e *Encoded) Predict(X [][]float64) ([]int, error) {
	if e.Codec == nil {
		return nil, fmt.Errorf("classifier is not fitted")
	}
	encoded, err := e.Inner.Predict(X)
	if err != nil {
		return nil, err
	}
	return e.Codec.Decode(encoded)
}
