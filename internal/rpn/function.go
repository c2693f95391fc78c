package rpn

import "github.com/roach88/keyprune/internal/ast"

// FunctionNode is a Node known to be a function call. It is only obtained
// through ToFunctionNode or ToFunctionNodeOrNull.
type FunctionNode struct {
	Node
}

// ToFunctionNode converts n to a function view. Converting a node that is
// not a function is a logical error.
func (n Node) ToFunctionNode() (FunctionNode, error) {
	if !n.IsFunction() {
		return FunctionNode{}, logicalError(n, "node is not a function")
	}
	return FunctionNode{Node: n}, nil
}

// ToFunctionNodeOrNull converts n to a function view, reporting false when
// n is not a function.
func (n Node) ToFunctionNodeOrNull() (FunctionNode, bool) {
	if !n.IsFunction() {
		return FunctionNode{}, false
	}
	return FunctionNode{Node: n}, true
}

func (f FunctionNode) FunctionName() string {
	switch r := f.ref.(type) {
	case syntaxRef:
		return r.node.(*ast.Function).Name
	case graphRef:
		return r.node.Function.Name
	}
	panic(badRef(f.ref))
}

// ArgumentsSize returns the number of arguments. A syntax call built
// without an argument list has none.
func (f FunctionNode) ArgumentsSize() int {
	switch r := f.ref.(type) {
	case syntaxRef:
		fn := r.node.(*ast.Function)
		if fn.Arguments == nil {
			return 0
		}
		return len(fn.Arguments.Items)
	case graphRef:
		return len(r.node.Children)
	}
	panic(badRef(f.ref))
}

// ArgumentAt returns argument i. The index is not checked: callers
// guarantee i < ArgumentsSize().
func (f FunctionNode) ArgumentAt(i int) Node {
	switch r := f.ref.(type) {
	case syntaxRef:
		return Node{ref: syntaxRef{node: r.node.(*ast.Function).Arguments.Items[i]}, ctx: f.ctx}
	case graphRef:
		return Node{ref: graphRef{node: r.node.Children[i]}, ctx: f.ctx}
	}
	panic(badRef(f.ref))
}

// Arguments returns all arguments in order.
func (f FunctionNode) Arguments() []Node {
	args := make([]Node, f.ArgumentsSize())
	for i := range args {
		args[i] = f.ArgumentAt(i)
	}
	return args
}
