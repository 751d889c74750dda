package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despesalab/categorizer/internal/classifier"
	"github.com/despesalab/categorizer/internal/common"
	"github.com/despesalab/categorizer/internal/expense"
	"github.com/despesalab/categorizer/internal/feature"
)

func trainingRows() []expense.Labeled {
	var rows []expense.Labeled
	for i := 0; i < 6; i++ {
		rows = append(rows,
			expense.Labeled{
				Record:     expense.Record{Name: "farmacia remedio", AmountCents: 5000 + float64(i)},
				CategoryID: 5,
			},
			expense.Labeled{
				Record:     expense.Record{Name: "mercado compra semanal", AmountCents: 30000 + float64(i)},
				CategoryID: 2,
			},
		)
	}
	return rows
}

func fittedPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p := New("K-Nearest Neighbors", feature.NewTransform(), classifier.NewKNN())
	require.NoError(t, p.Fit(trainingRows()))
	return p
}

func TestPipelineFitPredict(t *testing.T) {
	p := fittedPipeline(t)

	got, err := p.Predict([]expense.Record{
		{Name: "farmacia vitamina", AmountCents: 4800},
		{Name: "mercado compra", AmountCents: 29000},
	})

	require.NoError(t, err)
	assert.Equal(t, []int{5, 2}, got)
}

func TestBatchMatchesSequentialPredictions(t *testing.T) {
	p := fittedPipeline(t)
	queries := []expense.Record{
		{Name: "farmacia remedio", AmountCents: 5100},
		{Name: "mercado compra", AmountCents: 29500},
		{Name: "farmacia vitamina", AmountCents: 4500},
	}

	batch, err := p.Predict(queries)
	require.NoError(t, err)
	require.Len(t, batch, len(queries))

	for i, rec := range queries {
		single, err := p.Predict([]expense.Record{rec})
		require.NoError(t, err)
		assert.Equal(t, batch[i], single[0], "row %d", i)
	}
}

func TestPipelinePredictEmptyInput(t *testing.T) {
	// An empty batch returns an empty result without touching the
	// model, even on an unfit pipeline.
	p := New("unfit", feature.NewTransform(), classifier.NewKNN())

	got, err := p.Predict(nil)

	require.NoError(t, err)
	assert.Equal(t, []int{}, got)
}

func TestPipelinePredictUnfit(t *testing.T) {
	p := New("unfit", feature.NewTransform(), classifier.NewKNN())

	_, err := p.Predict([]expense.Record{{Name: "x", AmountCents: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPredictionFailed)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := fittedPipeline(t)
	path := filepath.Join(t.TempDir(), "model.gob")

	require.NoError(t, Save(p, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Name, loaded.Name)

	probe := []expense.Record{
		{Name: "farmacia remedio", AmountCents: 5100},
		{Name: "mercado padaria", AmountCents: 31000},
		{Name: "qualquer coisa", AmountCents: 100},
	}
	want, err := p.Predict(probe)
	require.NoError(t, err)
	got, err := loaded.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, want, got, "persisted pipeline must predict identically after reload")
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	p := fittedPipeline(t)

	require.NoError(t, Save(p, filepath.Join(dir, "model.gob")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "model.gob", entries[0].Name())
}

func TestLoadMissingModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.gob")

	_, err := Load(path)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrModelNotFound))
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "categorizer train")
}

func TestLoadCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob"), 0600))

	_, err := Load(path)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrModelCorrupted))
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		display string
		want    string
	}{
		{"Random Forest", "random_forest.gob"},
		{"SVM (RBF)", "svm_rbf.gob"},
		{"K-Nearest Neighbors", "k-nearest_neighbors.gob"},
		{"Boosted Trees (Histogram)", "boosted_trees_histogram.gob"},
	}

	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactName(tt.display))
		})
	}
}
