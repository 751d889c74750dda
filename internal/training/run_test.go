package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despesalab/categorizer/internal/common"
	"github.com/despesalab/categorizer/internal/dataset"
	"github.com/despesalab/categorizer/internal/expense"
	"github.com/despesalab/categorizer/internal/feature"
	"github.com/despesalab/categorizer/internal/pipeline"
)

// syntheticRows builds a dataset where the description fully
// determines the category, so every family can learn it.
func syntheticRows() []expense.Labeled {
	classes := []struct {
		name   string
		label  int
		amount float64
	}{
		{"farmacia remedio generico", 5, 4000},
		{"mercado compra semanal", 2, 30000},
		{"restaurante almoco executivo", 9, 7500},
	}

	var rows []expense.Labeled
	for _, c := range classes {
		for i := 0; i < 10; i++ {
			rows = append(rows, expense.Labeled{
				Record: expense.Record{
					Name:        fmt.Sprintf("%s %d", c.name, i),
					AmountCents: c.amount + float64(i*10),
				},
				CategoryID: c.label,
			})
		}
	}
	return rows
}

func TestCandidatesCatalog(t *testing.T) {
	base := Candidates(Capabilities{}, 42)
	require.Len(t, base, 5)
	assert.Equal(t, "Random Forest", base[0].Name)
	assert.Equal(t, "Gradient Boosting", base[1].Name)
	assert.Equal(t, "Logistic Regression", base[2].Name)
	assert.Equal(t, "SVM (RBF)", base[3].Name)
	assert.Equal(t, "K-Nearest Neighbors", base[4].Name)

	// Capability flags only grow the catalog; their absence is not an
	// error.
	full := Candidates(Capabilities{RegularizedBoosting: true, HistogramBoosting: true}, 42)
	require.Len(t, full, 7)
	assert.Equal(t, "Boosted Trees (Exact)", full[5].Name)
	assert.Equal(t, "Boosted Trees (Histogram)", full[6].Name)
}

func TestEvaluateScoresCandidate(t *testing.T) {
	rows := syntheticRows()
	split, err := dataset.StratifiedSplit(rows, 0.2, 42)
	require.NoError(t, err)

	cand := Candidates(Capabilities{}, 42)[4] // K-Nearest Neighbors
	res, err := Evaluate(cand, split)

	require.NoError(t, err)
	assert.Equal(t, "K-Nearest Neighbors", res.Name)
	assert.Equal(t, 1.0, res.Accuracy)
	assert.Equal(t, 1.0, res.F1Macro)
	assert.Greater(t, res.Duration.Nanoseconds(), int64(0))
}

func TestEvaluateEmptyValidation(t *testing.T) {
	cand := Candidates(Capabilities{}, 42)[4]
	_, err := Evaluate(cand, dataset.Split{Train: syntheticRows()})
	assert.Error(t, err)
}

// brokenModel always fails to fit.
type brokenModel struct{}

func (brokenModel) Fit(_ [][]float64, _ []int) error { return fmt.Errorf("singular matrix") }

func (brokenModel) Predict(_ [][]float64) ([]int, error) { return nil, fmt.Errorf("not fitted") }

func TestEvaluateFitFailure(t *testing.T) {
	rows := syntheticRows()
	split, err := dataset.StratifiedSplit(rows, 0.2, 42)
	require.NoError(t, err)

	cand := Candidate{
		Name:     "Broken",
		Pipeline: pipeline.New("Broken", feature.NewTransform(), brokenModel{}),
	}

	_, err = Evaluate(cand, split)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTrainingFailed)
	assert.Contains(t, err.Error(), "Broken")
}

func TestRunEmptyDataset(t *testing.T) {
	_, err := Run(context.Background(), nil, Config{
		ModelDir:    t.TempDir(),
		Seed:        42,
		ValFraction: 0.2,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEmptyDataset)
}

func TestRunTrainsSelectsAndPersists(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		ModelDir:    dir,
		Seed:        42,
		ValFraction: 0.2,
		Caps:        Capabilities{RegularizedBoosting: true, HistogramBoosting: true},
	}

	best, err := Run(context.Background(), syntheticRows(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, best.Accuracy)

	// Winner persisted under its sanitized name and the canonical name.
	canonical := filepath.Join(dir, pipeline.CanonicalName)
	named := filepath.Join(dir, pipeline.ArtifactName(best.Name))
	_, err = os.Stat(canonical)
	require.NoError(t, err)
	_, err = os.Stat(named)
	require.NoError(t, err)

	// The canonical artifact round-trips and serves predictions.
	loaded, err := pipeline.Load(canonical)
	require.NoError(t, err)
	got, err := loaded.Predict([]expense.Record{
		{Name: "farmacia remedio", AmountCents: 4100},
		{Name: "mercado compra", AmountCents: 30100},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2}, got)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, syntheticRows(), Config{
		ModelDir:    t.TempDir(),
		Seed:        42,
		ValFraction: 0.2,
	})
	assert.Error(t, err)
}
