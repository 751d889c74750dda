// Package dataset loads, cleans and splits the labeled expense data
// the training run consumes.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/despesalab/categorizer/internal/common"
)

// RawRow is one line of tabular input before cleaning. Fields are kept
// as text so that Clean owns all coercion decisions.
type RawRow struct {
	Name        string
	AmountCents string
	CategoryID  string
}

// requiredColumns are the columns a training table must provide.
var requiredColumns = []string{"name", "amount_cents", "category_id"}

// LoadCSV reads a labeled training table from a CSV file with a header
// row. It performs no transformation beyond column lookup; rows come
// back as raw text.
func LoadCSV(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrDataNotFound, path)
		}
		return nil, fmt.Errorf("failed to open training data: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse training data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", common.ErrMissingColumn, path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("%w: %s", common.ErrMissingColumn, want)
		}
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := RawRow{}
		if i := cols["name"]; i < len(rec) {
			row.Name = rec[i]
		}
		if i := cols["amount_cents"]; i < len(rec) {
			row.AmountCents = rec[i]
		}
		if i := cols["category_id"]; i < len(rec) {
			row.CategoryID = rec[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}
