package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keyprune/internal/types"
)

func sampleSpec() TableSpec {
	return TableSpec{
		Name: "hits",
		Columns: []ColumnSpec{
			{Name: "counter_id", Type: "UInt32"},
			{Name: "event_date", Type: "UInt16"},
			{Name: "url", Type: "Nullable(String)"},
		},
		SortingKey: "(counter_id, event_date % 7)",
	}
}

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"int", Int(-42), `-42`},
		{"bool", Bool(true), `true`},
		{"no html escape", String("<a&b>"), `"<a&b>"`},
		{"nfc", String("cafe\u0301"), "\"caf\u00e9\""},
		{"line separator literal", String("a\u2028b"), "\"a\u2028b\""},
		{"escaped backslash kept", String(`\u2028`), `"\\u2028"`},
		{"sorted keys", Object{"b": Int(1), "a": Int(2)}, `{"a":2,"b":1}`},
		{"utf16 order", Object{"\U0001F600": Int(1), "\uFB01": Int(2)}, "{\"\U0001F600\":1,\"\uFB01\":2}"},
		{"nested", Array{Object{"k": Array{}}, String("x")}, `[{"k":[]},"x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(Object{"a": nil})
	assert.ErrorContains(t, err, `value for key "a"`)
}

func TestTableSpecHash(t *testing.T) {
	spec := sampleSpec()
	h1 := MustTableSpecHash(spec)
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, MustTableSpecHash(sampleSpec()))

	legacy := sampleSpec()
	legacy.LegacyModulo = true
	assert.NotEqual(t, h1, MustTableSpecHash(legacy))

	reordered := sampleSpec()
	reordered.Columns[0], reordered.Columns[1] = reordered.Columns[1], reordered.Columns[0]
	assert.NotEqual(t, h1, MustTableSpecHash(reordered))
}

func TestHashWithDomainSeparates(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainTableSpec, data), hashWithDomain("keyprune/other/v1", data))
}

func TestColumnTypes(t *testing.T) {
	cols, err := sampleSpec().ColumnTypes()
	require.NoError(t, err)
	assert.Equal(t, types.UInt32, cols["counter_id"])
	assert.Equal(t, types.Nullable{Nested: types.String}, cols["url"])

	bad := sampleSpec()
	bad.Columns = append(bad.Columns, ColumnSpec{Name: "url", Type: "String"})
	_, err = bad.ColumnTypes()
	assert.ErrorContains(t, err, "duplicate column")

	bad = sampleSpec()
	bad.Columns[0].Type = "Decimal"
	_, err = bad.ColumnTypes()
	assert.Error(t, err)
}

func TestTableSpecKey(t *testing.T) {
	kd, err := sampleSpec().Key()
	require.NoError(t, err)
	assert.Equal(t, []string{"counter_id", "modulo(event_date, 7)"}, kd.ColumnNames)

	legacy := sampleSpec()
	legacy.LegacyModulo = true
	kd, err = legacy.Key()
	require.NoError(t, err)
	assert.Equal(t, "moduleLegacy(event_date, 7)", kd.ColumnNames[1])

	missing := sampleSpec()
	missing.SortingKey = "nope"
	_, err = missing.Key()
	assert.Error(t, err)
}
