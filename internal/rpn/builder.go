package rpn

// ElementFactory tells BuildRPN how to produce elements of type E.
type ElementFactory[E any] struct {
	// ExtractAtom interprets a node that is not a logical operator. It
	// reports false when the node says nothing usable, and Unknown is
	// emitted instead.
	ExtractAtom func(node Node) (E, bool)

	And     func() E
	Or      func() E
	Not     func() E
	Unknown func() E
}

// BuildRPN flattens a predicate into reverse Polish notation.
//
// and, or and not become logical elements: an n-ary and/or emits n-1
// binary operators, each after its right operand. Every other node is an
// atom.
//
//	a AND NOT b AND c  ->  [a, b, NOT, AND, c, AND]
func BuildRPN[E any](root Node, factory ElementFactory[E]) []E {
	b := &rpnBuilder[E]{factory: factory}
	b.traverse(root)
	return b.out
}

type rpnBuilder[E any] struct {
	factory ElementFactory[E]
	out     []E
}

func (b *rpnBuilder[E]) traverse(n Node) {
	if b.logical(n) {
		return
	}
	e, ok := b.factory.ExtractAtom(n)
	if !ok {
		e = b.factory.Unknown()
	}
	b.out = append(b.out, e)
}

func (b *rpnBuilder[E]) logical(n Node) bool {
	fn, ok := n.ToFunctionNodeOrNull()
	if !ok {
		return false
	}

	var op func() E
	switch fn.FunctionName() {
	case "not":
		if fn.ArgumentsSize() != 1 {
			return false
		}
		b.traverse(fn.ArgumentAt(0))
		b.out = append(b.out, b.factory.Not())
		return true
	case "and":
		op = b.factory.And
	case "or":
		op = b.factory.Or
	default:
		return false
	}

	size := fn.ArgumentsSize()
	if size == 0 {
		return false
	}
	for i := 0; i < size; i++ {
		b.traverse(fn.ArgumentAt(i))
		if i != 0 {
			b.out = append(b.out, op())
		}
	}
	return true
}
