package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keyprune/internal/types"
)

func lookup(t *testing.T, name string) *Base {
	t.Helper()
	b, ok := Default().Lookup(name)
	require.True(t, ok, "function %s", name)
	return b
}

func TestDefaultRegistryContents(t *testing.T) {
	for _, name := range []string{
		"plus", "minus", "multiply", "divide", "modulo", "moduleLegacy", "negate",
		"equals", "notEquals", "less", "greater", "lessOrEquals", "greaterOrEquals",
		"and", "or", "not", "in", "notIn", "tuple", "array", "toString", "lower",
	} {
		_, ok := Default().Lookup(name)
		assert.True(t, ok, name)
	}
	_, ok := Default().Lookup("arrayJoin")
	assert.False(t, ok)
	assert.IsIncreasing(t, Default().Names())
}

func TestResultTypes(t *testing.T) {
	tests := []struct {
		fn   string
		args []types.DataType
		want string
	}{
		{"plus", []types.DataType{types.UInt8, types.UInt8}, "UInt64"},
		{"plus", []types.DataType{types.UInt8, types.Int8}, "Int64"},
		{"plus", []types.DataType{types.UInt8, types.Float64}, "Float64"},
		{"plus", []types.DataType{types.Nullable{Nested: types.UInt8}, types.UInt8}, "Nullable(UInt64)"},
		{"minus", []types.DataType{types.UInt8, types.UInt8}, "Int64"},
		{"divide", []types.DataType{types.UInt8, types.UInt8}, "Float64"},
		{"modulo", []types.DataType{types.UInt64, types.UInt8}, "UInt64"},
		{"moduleLegacy", []types.DataType{types.UInt64, types.UInt8}, "UInt64"},
		{"negate", []types.DataType{types.UInt8}, "Int64"},
		{"equals", []types.DataType{types.UInt8, types.Int64}, "UInt8"},
		{"equals", []types.DataType{types.String, types.String}, "UInt8"},
		{"less", []types.DataType{types.Nullable{Nested: types.String}, types.String}, "Nullable(UInt8)"},
		{"and", []types.DataType{types.UInt8, types.UInt8, types.UInt8}, "UInt8"},
		{"or", []types.DataType{types.Nullable{Nested: types.UInt8}, types.UInt8}, "Nullable(UInt8)"},
		{"not", []types.DataType{types.UInt8}, "UInt8"},
		{"in", []types.DataType{types.UInt64, types.SetType}, "UInt8"},
		{"tuple", []types.DataType{types.UInt8, types.Nullable{Nested: types.String}}, "Tuple(UInt8, Nullable(String))"},
		{"array", []types.DataType{types.UInt8, types.UInt16}, "Array(UInt16)"},
		{"toString", []types.DataType{types.UInt8}, "String"},
		{"lower", []types.DataType{types.String}, "String"},
		{"plus", []types.DataType{types.Nullable{Nested: types.Nothing}, types.UInt8}, "Nullable(Nothing)"},
	}
	for _, tt := range tests {
		t.Run(tt.fn+"/"+tt.want, func(t *testing.T) {
			got, err := lookup(t, tt.fn).ResultType(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name())
		})
	}
}

func TestResultTypeErrors(t *testing.T) {
	_, err := lookup(t, "plus").ResultType([]types.DataType{types.UInt8})
	assert.ErrorContains(t, err, "expects 2 arguments, got 1")

	_, err = lookup(t, "and").ResultType([]types.DataType{types.UInt8})
	assert.ErrorContains(t, err, "at least 2")

	_, err = lookup(t, "plus").ResultType([]types.DataType{types.String, types.UInt8})
	assert.Error(t, err)

	_, err = lookup(t, "equals").ResultType([]types.DataType{types.String, types.UInt8})
	assert.Error(t, err)

	_, err = lookup(t, "lower").ResultType([]types.DataType{types.UInt8})
	assert.Error(t, err)
}

func TestFold(t *testing.T) {
	u := types.NewUInt64
	i := types.NewInt64
	tests := []struct {
		fn   string
		args []types.Field
		want types.Field
	}{
		{"plus", []types.Field{u(2), u(3)}, u(5)},
		{"plus", []types.Field{u(2), i(-3)}, i(-1)},
		{"plus", []types.Field{u(1), types.NewFloat64(0.5)}, types.NewFloat64(1.5)},
		{"minus", []types.Field{u(2), u(3)}, i(-1)},
		{"multiply", []types.Field{u(4), u(5)}, u(20)},
		{"divide", []types.Field{u(1), u(4)}, types.NewFloat64(0.25)},
		{"modulo", []types.Field{u(7), u(3)}, u(1)},
		{"moduleLegacy", []types.Field{u(7), u(3)}, u(1)},
		{"negate", []types.Field{u(7)}, i(-7)},
		{"equals", []types.Field{u(1), i(1)}, u(1)},
		{"less", []types.Field{i(-1), u(0)}, u(1)},
		{"greater", []types.Field{types.NewString("b"), types.NewString("a")}, u(1)},
		{"notEquals", []types.Field{u(1), u(1)}, u(0)},
		{"lessOrEquals", []types.Field{u(1), u(1)}, u(1)},
		{"greaterOrEquals", []types.Field{u(0), u(1)}, u(0)},
		{"and", []types.Field{u(1), u(0)}, u(0)},
		{"and", []types.Field{u(1), types.Null()}, types.Null()},
		{"and", []types.Field{u(0), types.Null()}, u(0)},
		{"or", []types.Field{u(0), types.Null()}, types.Null()},
		{"or", []types.Field{u(1), types.Null()}, u(1)},
		{"not", []types.Field{u(0)}, u(1)},
		{"plus", []types.Field{types.Null(), u(1)}, types.Null()},
		{"tuple", []types.Field{u(1), types.NewString("a")}, types.NewTuple(u(1), types.NewString("a"))},
		{"array", []types.Field{u(1), u(2)}, types.NewArray(u(1), u(2))},
		{"toString", []types.Field{u(42)}, types.NewString("42")},
		{"toString", []types.Field{types.NewString("x")}, types.NewString("x")},
		{"lower", []types.Field{types.NewString("AbC")}, types.NewString("abc")},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			got, err := lookup(t, tt.fn).Fold(tt.args)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", types.Dump(got), types.Dump(tt.want))
		})
	}
}

func TestFoldErrors(t *testing.T) {
	_, err := lookup(t, "modulo").Fold([]types.Field{types.NewUInt64(1), types.NewUInt64(0)})
	assert.ErrorIs(t, err, ErrDivisionByZero)

	in := lookup(t, "in")
	assert.False(t, in.CanFold())
	_, err = in.Fold([]types.Field{types.NewUInt64(1), types.NewUInt64(1)})
	assert.Error(t, err)

	_, err = lookup(t, "plus").Fold([]types.Field{types.NewString("a"), types.NewUInt64(1)})
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	c, err := Compare(types.NewTuple(types.NewUInt64(1), types.NewUInt64(2)), types.NewTuple(types.NewUInt64(1), types.NewUInt64(3)))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(types.NewUInt64(5), types.NewInt64(-5))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = Compare(types.NewString("a"), types.NewUInt64(1))
	assert.Error(t, err)
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(&Base{Name: "f", MinArgs: 0, MaxArgs: 0})
	r.Register(&Base{Name: "f", MinArgs: 1, MaxArgs: 1})
	b, ok := r.Lookup("f")
	require.True(t, ok)
	assert.Equal(t, 1, b.MinArgs)
	assert.Equal(t, []string{"f"}, r.Names())
}
