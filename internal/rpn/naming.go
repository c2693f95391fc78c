package rpn

import (
	"strings"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/dag"
	"github.com/roach88/keyprune/internal/keydesc"
	"github.com/roach88/keyprune/internal/types"
)

// ColumnName returns the canonical name of the expression: aliases are
// never substituted, and both representations produce the same text for
// the same expression.
func (n Node) ColumnName() string {
	return canonicalName(n, false)
}

// ColumnNameWithModuloLegacy is ColumnName with every modulo call named
// moduleLegacy, for matching keys persisted under the old name.
func (n Node) ColumnNameWithModuloLegacy() string {
	return canonicalName(n, true)
}

func canonicalName(n Node, legacy bool) string {
	switch r := n.ref.(type) {
	case syntaxRef:
		if !legacy {
			return r.node.ColumnNameWithoutAlias()
		}
		adjusted := ast.Clone(r.node)
		keydesc.ModuloToModuloLegacyRecursive(adjusted)
		return adjusted.ColumnNameWithoutAlias()
	case graphRef:
		var b strings.Builder
		appendGraphName(&b, r.node, legacy)
		return b.String()
	}
	panic(badRef(n.ref))
}

func appendGraphName(b *strings.Builder, node *dag.Node, legacy bool) {
	switch node.Type {
	case dag.ActionInput:
		b.WriteString(node.ResultName)
	case dag.ActionColumn:
		// The result name of a constant may be an alias: render the value.
		// Anything else, such as a set, keeps its result name.
		if v, ok := column.ConstValue(node.Column); ok {
			b.WriteString(types.FieldToString(v))
		} else {
			b.WriteString(node.ResultName)
		}
	case dag.ActionAlias:
		appendGraphName(b, node.Children[0], legacy)
	case dag.ActionArrayJoin:
		b.WriteString("arrayJoin(")
		appendGraphName(b, node.Children[0], legacy)
		b.WriteByte(')')
	case dag.ActionFunction:
		name := node.Function.Name
		if legacy && name == "modulo" {
			name = keydesc.LegacyModuloName
		}
		b.WriteString(name)
		b.WriteByte('(')
		for i, c := range node.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			appendGraphName(b, c, legacy)
		}
		b.WriteByte(')')
	}
}
