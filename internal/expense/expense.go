// Package expense defines the domain types shared by the training
// pipeline and the inference service.
package expense

// Record is a single expense as presented for prediction: its textual
// description and its monetary amount in minor currency units.
type Record struct {
	Name        string
	AmountCents float64
}

// Labeled is a training example: an expense together with the category
// it was filed under.
type Labeled struct {
	Record
	CategoryID int
}

// Records projects the expense part of a labeled slice.
func Records(rows []Labeled) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record
	}
	return out
}

// Labels projects the category ids of a labeled slice.
func Labels(rows []Labeled) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.CategoryID
	}
	return out
}
