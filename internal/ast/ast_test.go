package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keyprune/internal/types"
)

func TestNodeSealed(t *testing.T) {
	var _ Node = &Function{}
	var _ Node = &ExpressionList{}
	var _ Node = &Literal{}
	var _ Node = &Identifier{}
	var _ Node = &TableIdentifier{}
	var _ Node = &Subquery{}
}

func TestKindTags(t *testing.T) {
	assert.Equal(t, KindFunction, NewFunction("f").Kind())
	assert.Equal(t, KindLiteral, NewLiteral(types.NewUInt64(1)).Kind())
	assert.Equal(t, KindIdentifier, NewIdentifier("x").Kind())
	assert.Equal(t, KindTableIdentifier, (&TableIdentifier{Table: "t"}).Kind())
	assert.Equal(t, KindSubquery, (&Subquery{Query: "SELECT 1"}).Kind())
	assert.Equal(t, KindExpressionList, (&ExpressionList{}).Kind())
	assert.Equal(t, "Function", KindFunction.String())
}

func TestColumnNameFunction(t *testing.T) {
	n := NewFunction("modulo", NewIdentifier("x"), NewLiteral(types.NewUInt64(10)))
	assert.Equal(t, "modulo(x, 10)", n.ColumnName())
	assert.Equal(t, "modulo(x, 10)", n.ColumnNameWithoutAlias())
}

func TestColumnNameWithoutArgumentList(t *testing.T) {
	n := &Function{Name: "now"}
	assert.Equal(t, "now()", n.ColumnName())
	assert.Empty(t, n.Args())
	assert.Empty(t, n.Children())
}

func TestColumnNameAlias(t *testing.T) {
	inner := SetAlias(NewIdentifier("x"), "renamed").(*Identifier)
	n := NewFunction("plus", inner, NewLiteral(types.NewUInt64(1)))
	SetAlias(n, "total")

	// Aliases are ignored unless the node prefers them.
	assert.Equal(t, "plus(x, 1)", n.ColumnName())
	assert.Equal(t, "plus(x, 1)", n.ColumnNameWithoutAlias())

	inner.PreferAliasToColumnName = true
	assert.Equal(t, "plus(renamed, 1)", n.ColumnName())
	assert.Equal(t, "plus(x, 1)", n.ColumnNameWithoutAlias())

	n.PreferAliasToColumnName = true
	assert.Equal(t, "total", n.ColumnName())
	assert.Equal(t, "plus(x, 1)", n.ColumnNameWithoutAlias())

	assert.Equal(t, "total", AliasOf(n))
	assert.Equal(t, "", AliasOf(&ExpressionList{}))
}

func TestColumnNameLiterals(t *testing.T) {
	assert.Equal(t, "'abc'", NewLiteral(types.NewString("abc")).ColumnName())
	assert.Equal(t, "(1, 2)", NewLiteral(types.NewTuple(types.NewUInt64(1), types.NewUInt64(2))).ColumnName())
	assert.Equal(t, "NULL", NewLiteral(types.Null()).ColumnName())
}

func TestColumnNameTableAndSubquery(t *testing.T) {
	assert.Equal(t, "db.t", (&TableIdentifier{Database: "db", Table: "t"}).ColumnName())
	assert.Equal(t, "t", (&TableIdentifier{Table: "t"}).ColumnName())

	sq := &Subquery{Query: "SELECT 1"}
	assert.Regexp(t, `^__subquery_\d+_\d+$`, sq.ColumnName())
	sq.CTEName = "cte"
	assert.Equal(t, "cte", sq.ColumnName())
}

func TestCloneIsDeep(t *testing.T) {
	orig := MustParse("modulo(x, 10) + y").(*Function)
	cp := Clone(orig).(*Function)
	require.Equal(t, orig.ColumnName(), cp.ColumnName())

	cp.Args()[0].(*Function).Name = "moduleLegacy"
	assert.Equal(t, "plus(modulo(x, 10), y)", orig.ColumnName())
	assert.Equal(t, "plus(moduleLegacy(x, 10), y)", cp.ColumnName())
	assert.Nil(t, Clone(nil))
}

func TestWalk(t *testing.T) {
	n := MustParse("f(a, g(b), 1)")
	var kinds []Kind
	Walk(n, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, []Kind{
		KindFunction, KindExpressionList, KindIdentifier,
		KindFunction, KindExpressionList, KindIdentifier, KindLiteral,
	}, kinds)

	var visited int
	Walk(n, func(n Node) bool {
		visited++
		return n.Kind() != KindFunction
	})
	assert.Equal(t, 1, visited)
}

func TestTreeHashIgnoresAlias(t *testing.T) {
	a := MustParse("(1, 2, 3)")
	b := MustParse("(1, 2, 3) AS s")
	assert.Equal(t, TreeHashOf(a), TreeHashOf(b))
}

func TestTreeHashDistinguishesStructure(t *testing.T) {
	hashes := map[TreeHash]string{}
	for _, src := range []string{
		"f(x)", "f(y)", "g(x)", "f(x, y)", "f(f(x))",
		"1", "'1'", "-1", "(1, 2)", "[1, 2]", "x", "f()",
	} {
		h := TreeHashOf(MustParse(src))
		prev, dup := hashes[h]
		require.False(t, dup, "%q collides with %q", src, prev)
		hashes[h] = src
	}
}

func TestTreeHashStable(t *testing.T) {
	h1 := TreeHashOf(MustParse("in(x, (1, 2))"))
	h2 := TreeHashOf(MustParse("x IN (1, 2)"))
	assert.Equal(t, h1, h2)
	assert.Len(t, h1.String(), 32)
}
