package rpn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/dag"
	"github.com/roach88/keyprune/internal/sets"
	"github.com/roach88/keyprune/internal/types"
)

func TestRepresentationEquivalence(t *testing.T) {
	reg := sets.NewRegistry()
	ctx := NewTreeContext(nil, nil, reg)
	_, err := dag.PrepareSets(ast.MustParse("b IN (1, 2)"), dag.BuildOptions{Inputs: testInputs, Sets: reg})
	assert.NoError(t, err)

	tests := []struct {
		expr string
		want string
	}{
		{"x", "x"},
		{"x % 10", "modulo(x, 10)"},
		{"a + 1", "plus(a, 1)"},
		{"-5", "-5"},
		{"1.5", "1.5"},
		{`'it\'s'`, `'it\'s'`},
		{"NULL", "NULL"},
		{"1 + 2", "plus(1, 2)"},
		{"(a, b)", "tuple(a, b)"},
		{"(1, 'x')", "(1, 'x')"},
		{"[1, 2]", "[1, 2]"},
		{"arrayJoin(xs)", "arrayJoin(xs)"},
		{"lower(s) = 'x'", "equals(lower(s), 'x')"},
		{"NOT (a > 1 OR b < 2)", "not(or(greater(a, 1), less(b, 2)))"},
		{"b IN (1, 2)", "in(b, (1, 2))"},
		{"a NOT IN (3)", "notIn(a, 3)"},
		{"(a + 1) * 2 AS y", "multiply(plus(a, 1), 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			for rep, n := range both(t, ctx, tt.expr) {
				assert.Equal(t, tt.want, n.ColumnName(), rep)
			}
		})
	}
}

func TestAliasTransparency(t *testing.T) {
	ctx := NewTreeContext(nil, nil, nil)
	for _, pair := range [][2]string{
		{"a + 1", "a + 1 AS y"},
		{"arrayJoin(xs)", "arrayJoin(xs) AS v"},
		{"5", "5 AS five"},
		{"lower(s AS t)", "lower(s) AS l"},
		{"tuple(a AS p, b AS q)", "(a, b) AS pair"},
	} {
		plain, aliased := both(t, ctx, pair[0]), both(t, ctx, pair[1])
		for rep := range plain {
			assert.Equal(t, plain[rep].ColumnName(), aliased[rep].ColumnName(), "%s %s", rep, pair[1])
			assert.Equal(t, plain[rep].ColumnNameWithModuloLegacy(), aliased[rep].ColumnNameWithModuloLegacy())
		}
	}

	// Even an alias that the syntax tree prefers for its own column name is
	// dropped.
	n := ast.MustParse("a + 1 AS y")
	n.(*ast.Function).PreferAliasToColumnName = true
	assert.Equal(t, "y", n.ColumnName())
	assert.Equal(t, "plus(a, 1)", FromSyntax(n, ctx).ColumnName())
}

func TestArrayJoinAliasExample(t *testing.T) {
	ctx := NewTreeContext(nil, nil, nil)
	n := graphOf(t, ctx, "arrayJoin(xs) AS v")
	g, _ := n.Graph()
	assert.Equal(t, dag.ActionAlias, g.Type)
	assert.Equal(t, "arrayJoin(xs)", n.ColumnName())
}

func TestLegacyRenaming(t *testing.T) {
	ctx := NewTreeContext(nil, nil, nil)
	tests := []struct {
		expr, plain, legacy string
	}{
		{"modulo(x, 10)", "modulo(x, 10)", "moduleLegacy(x, 10)"},
		{"x % 10", "modulo(x, 10)", "moduleLegacy(x, 10)"},
		{"a % 2 + b % (c % 3)", "plus(modulo(a, 2), modulo(b, modulo(c, 3)))",
			"plus(moduleLegacy(a, 2), moduleLegacy(b, moduleLegacy(c, 3)))"},
		{"minus(a, 1)", "minus(a, 1)", "minus(a, 1)"},
		{"arrayJoin(xs) % 4 AS m", "modulo(arrayJoin(xs), 4)", "moduleLegacy(arrayJoin(xs), 4)"},
	}
	for _, tt := range tests {
		for rep, n := range both(t, ctx, tt.expr) {
			assert.Equal(t, tt.plain, n.ColumnName(), rep)
			assert.Equal(t, tt.legacy, n.ColumnNameWithModuloLegacy(), rep)
			// Legacy naming never touches the tree.
			assert.Equal(t, tt.plain, n.ColumnName(), rep)
		}
	}
}

func TestGraphColumnNaming(t *testing.T) {
	ctx := NewTreeContext(nil, nil, nil)
	d := dag.New(nil)

	// A constant column is named by its value, not its result name.
	c := d.AddColumn(constEntry("some_alias", types.UInt8, types.NewUInt64(7)))
	assert.Equal(t, "7", FromGraph(c, ctx).ColumnName())

	// A set column keeps its result name.
	set := d.AddColumn(setEntry("__set_1", finishedSet(types.UInt8)))
	assert.Equal(t, "__set_1", FromGraph(set, ctx).ColumnName())
}
