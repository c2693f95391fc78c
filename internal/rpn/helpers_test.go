package rpn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/dag"
	"github.com/roach88/keyprune/internal/sets"
	"github.com/roach88/keyprune/internal/types"
)

var testInputs = map[string]types.DataType{
	"a":  types.UInt64,
	"b":  types.UInt8,
	"c":  types.UInt8,
	"x":  types.UInt64,
	"s":  types.Nullable{Nested: types.String},
	"xs": types.Array{Elem: types.UInt32},
}

func syntaxOf(t *testing.T, ctx *TreeContext, expr string) Node {
	t.Helper()
	n, err := ast.Parse(expr)
	require.NoError(t, err)
	return FromSyntax(n, ctx)
}

func graphOf(t *testing.T, ctx *TreeContext, expr string) Node {
	t.Helper()
	n, err := ast.Parse(expr)
	require.NoError(t, err)
	_, root, err := dag.FromAST(n, dag.BuildOptions{
		Inputs:    testInputs,
		Constants: ctx.Constants(),
		Sets:      ctx.PreparedSets(),
	})
	require.NoError(t, err)
	return FromGraph(root, ctx)
}

// both returns the syntax and graph forms of expr.
func both(t *testing.T, ctx *TreeContext, expr string) map[string]Node {
	t.Helper()
	return map[string]Node{
		"syntax": syntaxOf(t, ctx, expr),
		"graph":  graphOf(t, ctx, expr),
	}
}

func constEntry(name string, typ types.DataType, v types.Field) column.WithTypeAndName {
	return column.WithTypeAndName{Column: column.NewConst(typ, v, 1), Type: typ, Name: name}
}

func finishedSet(elementTypes ...types.DataType) *sets.Set {
	s := sets.New(elementTypes)
	s.Finish()
	return s
}

func setEntry(name string, s *sets.Set) column.WithTypeAndName {
	return column.WithTypeAndName{Column: column.NewConstSet(s), Type: types.SetType, Name: name}
}
