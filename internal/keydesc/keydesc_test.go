package keydesc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/types"
)

var columns = map[string]types.DataType{
	"id":   types.UInt64,
	"name": types.String,
	"ts":   types.Int64,
}

func TestParseTupleKey(t *testing.T) {
	kd, err := Parse("(id % 16, lower(name))", columns, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"modulo(id, 16)", "lower(name)"}, kd.ColumnNames)
	assert.Equal(t, []types.DataType{types.UInt64, types.String}, kd.DataTypes)
	assert.Equal(t, 2, kd.Len())

	pos, ok := kd.Position("lower(name)")
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	_, ok = kd.Position("name")
	assert.False(t, ok)
}

func TestParseSingleAndEmptyKeys(t *testing.T) {
	kd, err := Parse("ts", columns, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ts"}, kd.ColumnNames)

	kd, err = Parse("tuple(id, ts)", columns, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "ts"}, kd.ColumnNames)

	kd, err = Parse("tuple()", columns, false)
	require.NoError(t, err)
	assert.Equal(t, 0, kd.Len())
}

func TestParseLegacyKey(t *testing.T) {
	kd, err := Parse("(id % 16, ts)", columns, true)
	require.NoError(t, err)
	assert.True(t, kd.Legacy)
	assert.Equal(t, []string{"moduleLegacy(id, 16)", "ts"}, kd.ColumnNames)
	assert.Equal(t, types.UInt64, kd.DataTypes[0])
}

func TestParseErrors(t *testing.T) {
	for _, def := range []string{"(id,", "missing", "1 + 1", "lower(id)"} {
		_, err := Parse(def, columns, false)
		var kerr *Error
		require.True(t, errors.As(err, &kerr), def)
		assert.Equal(t, def, kerr.Definition)
		assert.NotNil(t, errors.Unwrap(err))
	}
}

func TestModuloToModuloLegacyRecursive(t *testing.T) {
	n := ast.MustParse("plus(modulo(a, 2), b % (c % 3))")
	clone := ast.Clone(n)
	ModuloToModuloLegacyRecursive(clone)

	assert.Equal(t, "plus(moduleLegacy(a, 2), moduleLegacy(b, moduleLegacy(c, 3)))", clone.ColumnNameWithoutAlias())
	assert.Equal(t, "plus(modulo(a, 2), modulo(b, modulo(c, 3)))", n.ColumnNameWithoutAlias())

	other := ast.MustParse("minus(a, 1)")
	ModuloToModuloLegacyRecursive(other)
	assert.Equal(t, "minus(a, 1)", other.ColumnNameWithoutAlias())
}
