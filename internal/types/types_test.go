package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeSealed(t *testing.T) {
	var _ DataType = UInt8
	var _ DataType = Nullable{Nested: String}
	var _ DataType = Tuple{Elems: []DataType{UInt8, String}}
	var _ DataType = Array{Elem: Int64}
}

func TestDataTypeNames(t *testing.T) {
	assert.Equal(t, "UInt8", UInt8.Name())
	assert.Equal(t, "Nullable(String)", Nullable{Nested: String}.Name())
	assert.Equal(t, "Tuple(UInt8, Nullable(Int64))", Tuple{Elems: []DataType{UInt8, Nullable{Nested: Int64}}}.Name())
	assert.Equal(t, "Array(Float64)", Array{Elem: Float64}.Name())
	assert.Equal(t, "Set", SetType.Name())
}

func TestParseRoundTrip(t *testing.T) {
	names := []string{
		"UInt8", "UInt64", "Int32", "Float64", "String", "Nothing",
		"Nullable(UInt64)",
		"Array(Nullable(String))",
		"Tuple(UInt8, Array(Int64), Nullable(Float64))",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			typ, err := Parse(name)
			require.NoError(t, err)
			assert.Equal(t, name, typ.Name())
		})
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{"", "UInt", "Nullable(UInt8", "Nullable(UInt8, String)", "Nullable(Array(UInt8))", "Tuple(UInt8,)", "Map(String)"}
	for _, name := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(name)
			assert.Error(t, err)
		})
	}
}

func TestRemoveNullable(t *testing.T) {
	assert.Equal(t, UInt8, RemoveNullable(Nullable{Nested: UInt8}))
	assert.Equal(t, String, RemoveNullable(String))
	assert.True(t, IsNullable(MakeNullable(Int64)))
	assert.Equal(t, "Nullable(Int64)", MakeNullable(MakeNullable(Int64)).Name())

	tuple := Tuple{Elems: []DataType{UInt8}}
	assert.Equal(t, tuple, MakeNullable(tuple))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Nullable{Nested: UInt8}, MustParse("Nullable(UInt8)")))
	assert.False(t, Equal(UInt8, Nullable{Nested: UInt8}))
	assert.False(t, Equal(UInt8, nil))
	assert.True(t, Equal(nil, nil))
}

func TestFieldToString(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{Null(), "NULL"},
		{NewUInt64(10), "10"},
		{NewInt64(-5), "-5"},
		{NewFloat64(1.5), "1.5"},
		{NewFloat64(2), "2"},
		{NewString("abc"), "'abc'"},
		{NewString(`it's \ here`), `'it\'s \\ here'`},
		{NewTuple(NewUInt64(1), NewString("a")), "(1, 'a')"},
		{NewArray(NewUInt64(1), NewUInt64(2)), "[1, 2]"},
		{NewTuple(), "()"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldToString(tt.field))
			assert.Equal(t, tt.want, tt.field.String())
		})
	}
}

func TestDumpDistinguishesKinds(t *testing.T) {
	assert.Equal(t, "UInt64_5", Dump(NewUInt64(5)))
	assert.Equal(t, "Int64_5", Dump(NewInt64(5)))
	assert.Equal(t, "String_'5'", Dump(NewString("5")))
	assert.Equal(t, "Tuple_(UInt64_1, NULL)", Dump(NewTuple(NewUInt64(1), Null())))
	assert.NotEqual(t, Dump(NewUInt64(5)), Dump(NewInt64(5)))
}

func TestFieldEqual(t *testing.T) {
	assert.True(t, NewUInt64(1).Equal(NewUInt64(1)))
	assert.False(t, NewUInt64(1).Equal(NewInt64(1)))
	assert.True(t, Null().Equal(Field{}))
	assert.True(t, NewTuple(NewString("a")).Equal(NewTuple(NewString("a"))))
	assert.False(t, NewTuple(NewString("a")).Equal(NewArray(NewString("a"))))
}

func TestFieldToDataType(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{NewUInt64(5), "UInt8"},
		{NewUInt64(300), "UInt16"},
		{NewUInt64(70000), "UInt32"},
		{NewUInt64(1 << 40), "UInt64"},
		{NewInt64(-5), "Int8"},
		{NewInt64(-40000), "Int32"},
		{NewFloat64(0.5), "Float64"},
		{NewString("x"), "String"},
		{Null(), "Nullable(Nothing)"},
		{NewTuple(NewUInt64(1), NewString("a")), "Tuple(UInt8, String)"},
		{NewArray(NewUInt64(1), NewUInt64(1000)), "Array(UInt16)"},
		{NewArray(NewUInt64(1), Null()), "Array(Nullable(UInt8))"},
		{NewArray(), "Array(Nothing)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldToDataType(tt.field).Name())
		})
	}
}

func TestLeastSupertype(t *testing.T) {
	assert.Equal(t, Int16, LeastSupertype(UInt8, Int8))
	assert.Equal(t, Int64, LeastSupertype(UInt32, Int8))
	assert.Equal(t, Float64, LeastSupertype(UInt8, Float64))
	assert.Equal(t, String, LeastSupertype(UInt8, String))
	assert.Equal(t, "Nullable(UInt16)", LeastSupertype(UInt16, Nullable{Nested: UInt8}).Name())
	assert.Equal(t, Nothing, LeastSupertype())
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(NewUInt64(1)))
	assert.False(t, Truthy(NewUInt64(0)))
	assert.False(t, Truthy(Null()))
	assert.True(t, Truthy(NewString("x")))
}

func TestFromAny(t *testing.T) {
	f, err := FromAny(5)
	require.NoError(t, err)
	assert.Equal(t, NewUInt64(5), f)

	f, err = FromAny(-5)
	require.NoError(t, err)
	assert.Equal(t, NewInt64(-5), f)

	f, err = FromAny(1.25)
	require.NoError(t, err)
	assert.Equal(t, NewFloat64(1.25), f)

	f, err = FromAny([]any{1, "a", nil})
	require.NoError(t, err)
	assert.Equal(t, "(1, 'a', NULL)", f.String())

	_, err = FromAny(map[string]any{})
	assert.Error(t, err)
}
