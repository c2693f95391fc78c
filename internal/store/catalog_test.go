package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keyprune/internal/ir"
)

func hitsSpec() ir.TableSpec {
	return ir.TableSpec{
		Name: "hits",
		Columns: []ir.ColumnSpec{
			{Name: "counter_id", Type: "UInt32"},
			{Name: "event_date", Type: "UInt16"},
		},
		SortingKey: "(counter_id, event_date % 7)",
	}
}

func TestWriteReadTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	changed, err := s.WriteTable(ctx, hitsSpec())
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := s.ReadTable(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, hitsSpec(), got.Spec)
	assert.Equal(t, ir.MustTableSpecHash(hitsSpec()), got.Hash)
	assert.Equal(t, []KeyColumn{
		{Position: 0, Name: "counter_id", DataType: "UInt32"},
		{Position: 1, Name: "modulo(event_date, 7)", DataType: "UInt64"},
	}, got.KeyColumns)
}

func TestWriteTableUnchangedIsNoop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteTable(ctx, hitsSpec())
	require.NoError(t, err)

	changed, err := s.WriteTable(ctx, hitsSpec())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestWriteTableReplaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteTable(ctx, hitsSpec())
	require.NoError(t, err)

	legacy := hitsSpec()
	legacy.LegacyModulo = true
	changed, err := s.WriteTable(ctx, legacy)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := s.ReadTable(ctx, "hits")
	require.NoError(t, err)
	assert.True(t, got.Spec.LegacyModulo)
	require.Len(t, got.KeyColumns, 2)
	assert.Equal(t, "moduleLegacy(event_date, 7)", got.KeyColumns[1].Name)
}

func TestWriteTableRejectsBadKey(t *testing.T) {
	s := createTestStore(t)
	bad := hitsSpec()
	bad.SortingKey = "missing_column"

	_, err := s.WriteTable(context.Background(), bad)
	require.Error(t, err)

	tables, err := s.ListTables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestReadTableNotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadTable(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTablesAndKeyIndex(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	visits := ir.TableSpec{
		Name:       "visits",
		Columns:    []ir.ColumnSpec{{Name: "counter_id", Type: "UInt32"}},
		SortingKey: "counter_id",
	}
	for _, spec := range []ir.TableSpec{visits, hitsSpec()} {
		_, err := s.WriteTable(ctx, spec)
		require.NoError(t, err)
	}

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "hits", tables[0].Name)
	assert.Equal(t, "visits", tables[1].Name)
	assert.Equal(t, "counter_id", tables[1].SortingKey)

	names, err := s.TablesByKeyColumn(ctx, "counter_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"hits", "visits"}, names)

	names, err = s.TablesByKeyColumn(ctx, "modulo(event_date, 7)")
	require.NoError(t, err)
	assert.Equal(t, []string{"hits"}, names)
}

func TestListTablesBinaryOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "Zeta", "beta"} {
		spec := hitsSpec()
		spec.Name = name
		_, err := s.WriteTable(ctx, spec)
		require.NoError(t, err)
	}

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	got := make([]string, len(tables))
	for i, tbl := range tables {
		got[i] = tbl.Name
	}
	assert.Equal(t, []string{"Zeta", "alpha", "beta"}, got)

	names, err := s.TablesByKeyColumn(ctx, "counter_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "alpha", "beta"}, names)
}
