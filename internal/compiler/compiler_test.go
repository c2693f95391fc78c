package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keyprune/internal/ir"
)

const hitsSchema = `
table: hits: {
	columns: {
		counter_id: "UInt32"
		event_date: "UInt16"
		url:        "Nullable(String)"
	}
	sorting_key: "(counter_id, event_date % 7)"
}

table: visits: {
	columns: {id: "UInt64"}
	sorting_key:   "id % 16"
	legacy_modulo: true
}
`

func TestCompileTable(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(hitsSchema)
	require.NoError(t, v.Err())

	spec, err := CompileTable(v.LookupPath(cue.ParsePath("table.hits")))
	require.NoError(t, err)

	assert.Equal(t, "hits", spec.Name)
	assert.Equal(t, []ir.ColumnSpec{
		{Name: "counter_id", Type: "UInt32"},
		{Name: "event_date", Type: "UInt16"},
		{Name: "url", Type: "Nullable(String)"},
	}, spec.Columns)
	assert.Equal(t, "(counter_id, event_date % 7)", spec.SortingKey)
	assert.False(t, spec.LegacyModulo)
}

func TestCompileSource(t *testing.T) {
	specs, err := CompileSource("hits.cue", []byte(hitsSchema))
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "hits", specs[0].Name)
	assert.Equal(t, "visits", specs[1].Name)
	assert.True(t, specs[1].LegacyModulo)
}

func TestCompileTableMissingFields(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no columns", `table: t: {sorting_key: "a"}`, "columns are required"},
		{"no key", `table: t: {columns: {a: "UInt8"}}`, "sorting_key is required"},
		{"non-string type", `table: t: {columns: {a: 8}, sorting_key: "a"}`, "column type must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileSource("t.cue", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var ce *CompileError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestCompileSourceSyntaxError(t *testing.T) {
	_, err := CompileSource("broken.cue", []byte(`table: t: {`))
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestCompileSourceNoTables(t *testing.T) {
	_, err := CompileSource("empty.cue", []byte(`other: 1`))
	assert.ErrorContains(t, err, "no tables defined")
}

func TestValidate(t *testing.T) {
	good := &ir.TableSpec{
		Name:       "hits",
		Columns:    []ir.ColumnSpec{{Name: "a", Type: "UInt64"}},
		SortingKey: "a",
	}
	assert.Empty(t, Validate(good))

	tests := []struct {
		name  string
		spec  ir.TableSpec
		codes []string
	}{
		{"empty", ir.TableSpec{}, []string{ErrTableNameEmpty, ErrNoColumns, ErrSortingKeyEmpty}},
		{"bad type", ir.TableSpec{
			Name:       "t",
			Columns:    []ir.ColumnSpec{{Name: "a", Type: "Decimal"}},
			SortingKey: "a",
		}, []string{ErrInvalidColumnType}},
		{"duplicate", ir.TableSpec{
			Name:       "t",
			Columns:    []ir.ColumnSpec{{Name: "a", Type: "UInt8"}, {Name: "a", Type: "UInt8"}},
			SortingKey: "a",
		}, []string{ErrDuplicateColumn}},
		{"unknown key column", ir.TableSpec{
			Name:       "t",
			Columns:    []ir.ColumnSpec{{Name: "a", Type: "UInt8"}},
			SortingKey: "b",
		}, []string{ErrInvalidSortingKey}},
		{"constant key", ir.TableSpec{
			Name:       "t",
			Columns:    []ir.ColumnSpec{{Name: "a", Type: "UInt8"}},
			SortingKey: "(a, 1)",
		}, []string{ErrInvalidSortingKey}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.spec)
			codes := make([]string, len(errs))
			for i, e := range errs {
				codes[i] = e.Code
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}
