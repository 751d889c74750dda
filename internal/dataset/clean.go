package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/despesalab/categorizer/internal/expense"
)

// Clean coerces raw rows into typed training examples, dropping any
// row with a missing description, a non-numeric amount or an unusable
// label. The input slice is never modified.
func Clean(rows []RawRow) []expense.Labeled {
	out := make([]expense.Labeled, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(row.AmountCents), 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
			continue
		}

		category, err := parseCategory(row.CategoryID)
		if err != nil {
			continue
		}

		out = append(out, expense.Labeled{
			Record: expense.Record{
				Name:        name,
				AmountCents: amount,
			},
			CategoryID: category,
		})
	}
	return out
}

// parseCategory accepts integer labels, including ones serialized in
// float form ("5.0") by spreadsheet exports.
func parseCategory(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
