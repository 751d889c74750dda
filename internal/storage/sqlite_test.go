package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despesalab/categorizer/internal/expense"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestInsertAndListLabeled(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rows := []expense.Labeled{
		{Record: expense.Record{Name: "Farmácia", AmountCents: 5000}, CategoryID: 5},
		{Record: expense.Record{Name: "Mercado", AmountCents: 30000}, CategoryID: 2},
	}
	require.NoError(t, s.InsertLabeled(ctx, rows))

	got, err := s.ListLabeled(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsertLabeledEmptyIsNoop(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertLabeled(ctx, nil))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))

	require.NoError(t, s.InsertLabeled(ctx, []expense.Labeled{
		{Record: expense.Record{Name: "Padaria", AmountCents: 300}, CategoryID: 1},
	}))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
