package rpn

import (
	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/dag"
	"github.com/roach88/keyprune/internal/sets"
	"github.com/roach88/keyprune/internal/types"
)

// The three lookups below return nil when no set qualifies. A set that is
// still being built never qualifies.

// TryGetPreparedSet returns any ready set prepared from an expression with
// the node's structure. For a graph node, the set is the node's own
// (possibly constant-wrapped) set column.
func (n Node) TryGetPreparedSet() *sets.Set {
	switch r := n.ref.(type) {
	case syntaxRef:
		for _, s := range n.ctx.PreparedSets().ByTreeHash(ast.TreeHashOf(r.node)) {
			if s.IsCreated() {
				return s
			}
		}
		return nil
	case graphRef:
		return setFromGraphNode(r.node)
	}
	panic(badRef(n.ref))
}

// TryGetPreparedSetForTypes returns the ready set prepared for the node with
// the given left-hand side types. Subqueries and tables are looked up by
// their own key, which does not depend on types. Graph nodes ignore the
// types.
func (n Node) TryGetPreparedSetForTypes(lhsTypes []types.DataType) *sets.Set {
	switch r := n.ref.(type) {
	case syntaxRef:
		return ready(n.ctx.PreparedSets().Get(syntaxSetKey(r.node, lhsTypes)))
	case graphRef:
		return setFromGraphNode(r.node)
	}
	panic(badRef(n.ref))
}

// TryGetPreparedSetForKey returns the first ready set prepared from an
// expression with the node's structure whose element type at
// mapping[i].TupleIndex equals keyTypes[i] for every i.
//
// It serves callers that know the key column types but not the exact
// left-hand side types a literal set was prepared with. mapping and
// keyTypes must have the same length; otherwise nothing matches.
func (n Node) TryGetPreparedSetForKey(mapping []sets.KeyTuplePositionMapping, keyTypes []types.DataType) *sets.Set {
	switch r := n.ref.(type) {
	case syntaxRef:
		switch r.node.Kind() {
		case ast.KindSubquery, ast.KindTableIdentifier:
			return ready(n.ctx.PreparedSets().Get(sets.KeyForSubquery(r.node)))
		}
		if len(mapping) != len(keyTypes) {
			return nil
		}
		for _, s := range n.ctx.PreparedSets().ByTreeHash(ast.TreeHashOf(r.node)) {
			if s.IsCreated() && typesMatch(s, mapping, keyTypes) {
				return s
			}
		}
		return nil
	case graphRef:
		return setFromGraphNode(r.node)
	}
	panic(badRef(n.ref))
}

func syntaxSetKey(node ast.Node, lhsTypes []types.DataType) sets.Key {
	switch node.Kind() {
	case ast.KindSubquery, ast.KindTableIdentifier:
		return sets.KeyForSubquery(node)
	}
	return sets.KeyForLiteral(node, lhsTypes)
}

func typesMatch(s *sets.Set, mapping []sets.KeyTuplePositionMapping, keyTypes []types.DataType) bool {
	for i, m := range mapping {
		if !s.AreTypesEqual(m.TupleIndex, keyTypes[i]) {
			return false
		}
	}
	return true
}

// setFromGraphNode returns the ready set carried by the node's column. A
// node without a column has no set.
func setFromGraphNode(node *dag.Node) *sets.Set {
	if node.Column == nil {
		return nil
	}
	s, ok := column.SetOf(node.Column)
	if !ok {
		return nil
	}
	return ready(s)
}

func ready(s *sets.Set) *sets.Set {
	if s == nil || !s.IsCreated() {
		return nil
	}
	return s
}
