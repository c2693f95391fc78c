package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestRun_Basics(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/basics.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// Nine expressions, three of them restricted to one representation.
	assert.Len(t, result.Expressions, 15)
	assert.Len(t, result.Conditions, 4)
}

func TestRun_LegacyHitsGolden(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/legacy_hits.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expectations",
		Columns:     map[string]string{"a": "UInt64"},
		Key:         &KeySpec{Definition: "a"},
		Expressions: []ExpressionCase{{
			Expr:            "a + 1",
			Representations: []string{RepSyntax},
			Expect:          ExpressionExpect{ColumnName: ptr("plus(a, 2)"), Value: ptr("1")},
		}},
		Predicates: []PredicateCase{{
			Where:           "a = 1",
			Representations: []string{RepGraph},
			RPN:             ptr("unknown"),
			Useless:         ptr(true),
		}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], `column_name: got plus(a, 1), want plus(a, 2)`)
	assert.Contains(t, result.Errors[1], "value: no constant value")
	assert.Contains(t, result.Errors[2], `rpn: got "(column 0 in [1, 1])", want "unknown"`)
	assert.Contains(t, result.Errors[3], "useless: got false, want true")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		scenario *Scenario
		want     string
	}{
		{"bad column type", &Scenario{
			Columns:     map[string]string{"a": "Decimal"},
			Expressions: []ExpressionCase{{Expr: "a"}},
		}, "column a"},
		{"bad expression", &Scenario{
			Columns:     map[string]string{"a": "UInt8"},
			Expressions: []ExpressionCase{{Expr: "a +"}},
		}, "expressions[0]"},
		{"unknown column in graph", &Scenario{
			Columns:     map[string]string{"a": "UInt8"},
			Expressions: []ExpressionCase{{Expr: "b", Representations: []string{RepGraph}}},
		}, "expressions[0] graph"},
		{"no key", &Scenario{
			Columns:    map[string]string{"a": "UInt8"},
			Predicates: []PredicateCase{{Where: "a = 1"}},
		}, "predicates need a key"},
		{"missing table in schema", &Scenario{
			Schema:      "testdata/schemas/hits.cue",
			Table:       "visits",
			Expressions: []ExpressionCase{{Expr: "counter_id"}},
		}, "table visits not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	scenario, err := LoadScenario("testdata/scenarios/legacy_hits.yaml")
	require.NoError(t, err)
	_, err = Run(scenario, WithLogger(logger))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "scenario prepared")
	assert.Contains(t, buf.String(), "key condition atom")
}

func TestSnapshotIsDeterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/basics.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot("basics", first)
	require.NoError(t, err)
	b, err := Snapshot("basics", second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
