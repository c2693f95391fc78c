package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keyprune/internal/rpn"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/basics.yaml")
	require.NoError(t, err)

	assert.Equal(t, "basics", scenario.Name)
	assert.Equal(t, "UInt64", scenario.Columns["x"])
	require.NotNil(t, scenario.Key)
	assert.Equal(t, "(x, b)", scenario.Key.Definition)
	assert.Len(t, scenario.Subqueries, 2)
	assert.True(t, scenario.Subqueries[1].Pending)
	require.Len(t, scenario.Expressions, 9)
	assert.Equal(t, []string{RepGraph}, scenario.Expressions[2].Representations)
	require.NotNil(t, scenario.Expressions[0].Expect.ColumnName)
	assert.Equal(t, "modulo(x, 10)", *scenario.Expressions[0].Expect.ColumnName)
	require.NotNil(t, scenario.Settings)
	assert.Equal(t, rpn.DefaultSettings(), *scenario.Settings)
}

func TestLoadScenario_ResolvesSchemaPath(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/legacy_hits.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "schemas", "hits.cue"), scenario.Schema)
	require.NotNil(t, scenario.Settings)
	assert.False(t, scenario.Settings.UseIndexForInWithSubqueries)
}

func TestLoadScenario_PartialSettingsKeepDefaults(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `name: partial
description: "Only one setting given"
columns:
  x: UInt64
settings:
  transform_null_in: true
expressions:
  - expr: "x"
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	require.NotNil(t, scenario.Settings)
	assert.True(t, scenario.Settings.TransformNullIn)
	assert.True(t, scenario.Settings.UseIndexForInWithSubqueries)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: typo
description: "misspelled field"
columns: {a: UInt8}
expresions:
  - expr: a
`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no name", `
description: d
columns: {a: UInt8}
expressions: [{expr: a}]
`, "name is required"},
		{"no description", `
name: n
columns: {a: UInt8}
expressions: [{expr: a}]
`, "description is required"},
		{"no table", `
name: n
description: d
expressions: [{expr: a}]
`, "schema or columns is required"},
		{"nothing to check", `
name: n
description: d
columns: {a: UInt8}
`, "at least one expression or predicate"},
		{"bad representation", `
name: n
description: d
columns: {a: UInt8}
expressions: [{expr: a, representations: [tree]}]
`, `unknown representation "tree"`},
		{"predicate without key", `
name: n
description: d
columns: {a: UInt8}
predicates: [{where: a = 1}]
`, "predicates need a key"},
		{"missing schema", `
name: n
description: d
schema: nope.cue
table: t
expressions: [{expr: a}]
`, "schema file not found"},
		{"schema without table", `
name: n
description: d
schema: nope.cue
expressions: [{expr: a}]
`, "table is required with schema"},
		{"subquery without types", `
name: n
description: d
columns: {a: UInt8}
subqueries: [{query: "(SELECT 1)"}]
expressions: [{expr: a}]
`, "subqueries[0]: query and types are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRepresentations(t *testing.T) {
	assert.Equal(t, []string{RepSyntax, RepGraph}, representations(nil))
	assert.Equal(t, []string{RepSyntax, RepGraph}, representations([]string{RepGraph, RepSyntax}))
	assert.Equal(t, []string{RepGraph}, representations([]string{RepGraph}))
}
