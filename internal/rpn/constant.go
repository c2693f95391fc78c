package rpn

import (
	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/dag"
	"github.com/roach88/keyprune/internal/types"
)

// IsFunction reports whether the node is a function call.
func (n Node) IsFunction() bool {
	switch r := n.ref.(type) {
	case syntaxRef:
		return r.node.Kind() == ast.KindFunction
	case graphRef:
		return r.node.Type == dag.ActionFunction
	}
	panic(badRef(n.ref))
}

// IsConstant reports whether the node's value is known before execution:
// a literal, an expression pre-evaluated into the constants block, or a
// graph node carrying a constant column.
//
// Constants-block lookups use the alias-aware name: pre-evaluated
// expressions are stored under the name they were computed as.
func (n Node) IsConstant() bool {
	switch r := n.ref.(type) {
	case syntaxRef:
		if r.node.Kind() == ast.KindLiteral {
			return true
		}
		c, ok := n.ctx.Constants().ByName(r.node.ColumnName())
		return ok && column.IsConst(c.Column)
	case graphRef:
		return r.node.Column != nil && column.IsConst(r.node.Column)
	}
	panic(badRef(n.ref))
}

// ConstantColumn returns the constant column of the node. Calling it on a
// node for which IsConstant is false is a logical error.
//
// A literal yields a one-row constant column of the literal's own inferred
// type. Other syntax nodes yield their constants-block entry. Graph nodes
// yield their declared type and column.
func (n Node) ConstantColumn() (column.WithTypeAndName, error) {
	if !n.IsConstant() {
		return column.WithTypeAndName{}, logicalError(n, "node is not a constant")
	}

	switch r := n.ref.(type) {
	case syntaxRef:
		if lit, ok := r.node.(*ast.Literal); ok {
			t := types.FieldToDataType(lit.Value)
			return column.WithTypeAndName{
				Column: column.NewConst(t, lit.Value, 1),
				Type:   t,
				Name:   lit.ColumnName(),
			}, nil
		}
		c, _ := n.ctx.Constants().ByName(r.node.ColumnName())
		return c, nil
	case graphRef:
		return column.WithTypeAndName{
			Column: r.node.Column,
			Type:   r.node.ResultType,
			Name:   r.node.ResultName,
		}, nil
	}
	panic(badRef(n.ref))
}

// TryGetConstant returns the value and type of a constant node. It reports
// false, with zero outputs, when the node has no scalar constant value; a
// constant set is not a scalar.
//
// The type of a literal comes from the constants block entry of the same
// name. A block that only holds constants may not have been name-resolved,
// so a missing entry falls back to the "_dummy" entry, and a block without
// either to the literal's inferred type.
//
// A non-null value never has a Nullable type.
func (n Node) TryGetConstant() (types.Field, types.DataType, bool) {
	var (
		value types.Field
		typ   types.DataType
	)

	switch r := n.ref.(type) {
	case syntaxRef:
		name := r.node.ColumnName()
		block := n.ctx.Constants()

		if lit, ok := r.node.(*ast.Literal); ok {
			value = lit.Value
			if c, ok := block.ByName(name); ok {
				typ = c.Type
			} else if c, ok := block.ByName(column.DummyName); ok {
				typ = c.Type
			} else {
				typ = types.FieldToDataType(lit.Value)
			}
			break
		}

		c, ok := block.ByName(name)
		if !ok {
			return types.Field{}, nil, false
		}
		v, ok := column.ConstValue(c.Column)
		if !ok {
			return types.Field{}, nil, false
		}
		value, typ = v, c.Type
	case graphRef:
		v, ok := column.ConstValue(r.node.Column)
		if !ok {
			return types.Field{}, nil, false
		}
		value, typ = v, r.node.ResultType
	default:
		panic(badRef(n.ref))
	}

	if !value.IsNull() {
		typ = types.RemoveNullable(typ)
	}
	return value, typ, true
}
