package rpn

import (
	"fmt"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/dag"
)

// ref is the representation a Node points into.
//
// This is a sealed interface with exactly two implementations: syntaxRef
// and graphRef. A Node therefore always refers to exactly one tree.
type ref interface {
	ref() // Sealed
}

type syntaxRef struct{ node ast.Node }

type graphRef struct{ node *dag.Node }

func (syntaxRef) ref() {}
func (graphRef) ref()  {}

// Node is a handle on an expression node of either a syntax tree or an
// action graph, together with the analysis context.
//
// Nodes do not own the trees they point into; the caller keeps the trees
// alive for as long as the nodes are used. The zero Node is invalid.
type Node struct {
	ref ref
	ctx *TreeContext
}

// FromSyntax wraps a syntax tree node. It panics if n or ctx is nil.
func FromSyntax(n ast.Node, ctx *TreeContext) Node {
	if n == nil || ctx == nil {
		panic("rpn.FromSyntax: nil node or context")
	}
	return Node{ref: syntaxRef{node: n}, ctx: ctx}
}

// FromGraph wraps an action graph node. It panics if n or ctx is nil.
func FromGraph(n *dag.Node, ctx *TreeContext) Node {
	if n == nil || ctx == nil {
		panic("rpn.FromGraph: nil node or context")
	}
	return Node{ref: graphRef{node: n}, ctx: ctx}
}

func (n Node) TreeContext() *TreeContext { return n.ctx }

// Syntax returns the syntax tree node, if n points into a syntax tree.
func (n Node) Syntax() (ast.Node, bool) {
	r, ok := n.ref.(syntaxRef)
	return r.node, ok
}

// Graph returns the action graph node, if n points into an action graph.
func (n Node) Graph() (*dag.Node, bool) {
	r, ok := n.ref.(graphRef)
	return r.node, ok
}

func (n Node) String() string {
	switch n.ref.(type) {
	case syntaxRef:
		return "syntax:" + n.ColumnName()
	case graphRef:
		return "graph:" + n.ColumnName()
	}
	return "<invalid>"
}

func badRef(r ref) string {
	return fmt.Sprintf("rpn: invalid node reference %T", r)
}
