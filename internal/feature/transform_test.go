package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despesalab/categorizer/internal/expense"
)

func TestScalerStandardizes(t *testing.T) {
	s := &Scaler{}
	require.NoError(t, s.Fit([]float64{2, 4, 6, 8}))

	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	// Population standard deviation of {2,4,6,8} is sqrt(5).
	assert.InDelta(t, 2.2360679, s.StdDev, 1e-6)
	assert.InDelta(t, 0.0, s.Transform(5), 1e-9)
	assert.InDelta(t, 1.3416407, s.Transform(8), 1e-6)
}

func TestScalerConstantColumn(t *testing.T) {
	s := &Scaler{}
	require.NoError(t, s.Fit([]float64{7, 7, 7}))

	assert.Zero(t, s.StdDev)
	assert.Equal(t, 0.0, s.Transform(7))
	assert.Equal(t, 3.0, s.Transform(10))
}

func TestScalerEmpty(t *testing.T) {
	s := &Scaler{}
	assert.Error(t, s.Fit(nil))
}

func trainingRecords() []expense.Record {
	return []expense.Record{
		{Name: "farmacia remedio", AmountCents: 5000},
		{Name: "farmacia vitamina", AmountCents: 3000},
		{Name: "mercado compra", AmountCents: 12000},
		{Name: "mercado padaria", AmountCents: 8000},
	}
}

func TestTransformWidth(t *testing.T) {
	tr := NewTransform()
	require.NoError(t, tr.Fit(trainingRecords()))

	// TF-IDF columns plus the standardized amount.
	assert.Equal(t, tr.Text.Width()+1, tr.Width())

	X, err := tr.Apply(trainingRecords())
	require.NoError(t, err)
	require.Len(t, X, 4)
	for _, row := range X {
		assert.Len(t, row, tr.Width())
	}
}

func TestTransformStableAcrossCalls(t *testing.T) {
	tr := NewTransform()
	require.NoError(t, tr.Fit(trainingRecords()))

	one := expense.Record{Name: "farmacia remedio", AmountCents: 5000}
	a, err := tr.Apply([]expense.Record{one})
	require.NoError(t, err)
	b, err := tr.Apply([]expense.Record{one})
	require.NoError(t, err)

	// Fitted state is reused unchanged: identical input, identical
	// vector, on every call.
	assert.Equal(t, a, b)
}

func TestTransformUnfit(t *testing.T) {
	tr := NewTransform()
	_, err := tr.Apply(trainingRecords())
	assert.Error(t, err)
}

func TestTransformAmountColumn(t *testing.T) {
	tr := NewTransform()
	require.NoError(t, tr.Fit(trainingRecords()))

	X, err := tr.Apply([]expense.Record{{Name: "farmacia remedio", AmountCents: 7000}})
	require.NoError(t, err)

	want := tr.Amount.Transform(7000)
	assert.InDelta(t, want, X[0][tr.Width()-1], 1e-12)
}
