package dag

import (
	"fmt"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/functions"
	"github.com/roach88/keyprune/internal/sets"
	"github.com/roach88/keyprune/internal/types"
)

// BuildOptions configures FromAST.
type BuildOptions struct {
	// Inputs are the source columns identifiers resolve to.
	Inputs map[string]types.DataType

	// Constants resolves identifiers that are not inputs, e.g. scalar
	// subquery results substituted by name.
	Constants *column.Block

	// Sets supplies the prepared right-hand sides of IN. A set found here
	// becomes a constant Set column.
	Sets *sets.Registry

	// Functions resolves function names. Nil means functions.Default().
	Functions *functions.Registry
}

// FromAST compiles a syntax tree into a new graph and returns the graph and
// the node computing root. The node is registered as the graph's output.
func FromAST(root ast.Node, opts BuildOptions) (*ActionsDAG, *Node, error) {
	d := New(opts.Functions)
	n, err := d.AddAST(root, opts)
	if err != nil {
		return nil, nil, err
	}
	d.AddOutput(n)
	return d, n, nil
}

// AddAST compiles a syntax tree into the graph and returns its node.
func (d *ActionsDAG) AddAST(node ast.Node, opts BuildOptions) (*Node, error) {
	b := &builder{dag: d, opts: opts}
	return b.visit(node)
}

type builder struct {
	dag  *ActionsDAG
	opts BuildOptions
}

func (b *builder) visit(node ast.Node) (*Node, error) {
	n, err := b.visitExpr(node)
	if err != nil {
		return nil, err
	}
	alias := ast.AliasOf(node)
	if alias == "" || alias == n.ResultName {
		return n, nil
	}
	if _, isLiteral := node.(*ast.Literal); isLiteral {
		return n, nil
	}
	return b.dag.AddAlias(n, alias), nil
}

func (b *builder) visitExpr(node ast.Node) (*Node, error) {
	switch n := node.(type) {
	case *ast.Identifier:
		return b.identifier(n)
	case *ast.Literal:
		return b.literal(n), nil
	case *ast.Function:
		return b.function(n)
	case *ast.Subquery, *ast.TableIdentifier:
		return nil, fmt.Errorf("%s %s is only supported on the right-hand side of IN", n.Kind(), n.ColumnNameWithoutAlias())
	default:
		return nil, fmt.Errorf("unexpected %s in expression", node.Kind())
	}
}

func (b *builder) identifier(id *ast.Identifier) (*Node, error) {
	if t, ok := b.opts.Inputs[id.Name]; ok {
		return b.dag.AddInput(id.Name, t)
	}
	if c, ok := b.opts.Constants.ByName(id.Name); ok {
		return b.dag.AddColumn(c), nil
	}
	return nil, fmt.Errorf("unknown identifier %s", id.Name)
}

// A literal becomes a constant column. Its result name is the alias when it
// has one, and the literal text otherwise.
func (b *builder) literal(lit *ast.Literal) *Node {
	name := lit.Alias
	if name == "" {
		name = lit.ColumnNameWithoutAlias()
	}
	t := types.FieldToDataType(lit.Value)
	return b.dag.AddColumn(column.WithTypeAndName{
		Column: column.NewConst(t, lit.Value, 1),
		Type:   t,
		Name:   name,
	})
}

func (b *builder) function(fn *ast.Function) (*Node, error) {
	args := fn.Args()
	switch fn.Name {
	case "arrayJoin":
		if len(args) != 1 {
			return nil, fmt.Errorf("arrayJoin expects 1 argument, got %d", len(args))
		}
		child, err := b.visit(args[0])
		if err != nil {
			return nil, err
		}
		return b.dag.AddArrayJoin(child, fn.ColumnNameWithoutAlias())
	case "in", "notIn":
		if len(args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", fn.Name, len(args))
		}
		return b.membership(fn, args[0], args[1])
	}

	children := make([]*Node, len(args))
	for i, a := range args {
		c, err := b.visit(a)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return b.dag.AddFunctionByName(fn.Name, children, fn.ColumnNameWithoutAlias())
}

func (b *builder) membership(fn *ast.Function, lhs, rhs ast.Node) (*Node, error) {
	left, err := b.visit(lhs)
	if err != nil {
		return nil, err
	}
	right, err := b.setOperand(rhs, ElementTypes(left.ResultType))
	if err != nil {
		return nil, err
	}
	return b.dag.AddFunctionByName(fn.Name, []*Node{left, right}, fn.ColumnNameWithoutAlias())
}

// setOperand compiles the right-hand side of IN. A registered set becomes a
// constant Set column named like the expression it was prepared from. An unprepared subquery or table becomes a Set-typed
// column without a value; an unprepared literal list stays a plain
// constant.
func (b *builder) setOperand(rhs ast.Node, lhsTypes []types.DataType) (*Node, error) {
	var key sets.Key
	fromQuery := false
	switch rhs.(type) {
	case *ast.Subquery, *ast.TableIdentifier:
		key = sets.KeyForSubquery(rhs)
		fromQuery = true
	default:
		key = sets.KeyForLiteral(rhs, lhsTypes)
	}

	if s := b.opts.Sets.Get(key); s != nil {
		return b.dag.AddColumn(column.WithTypeAndName{
			Column: column.NewConstSet(s),
			Type:   types.SetType,
			Name:   rhs.ColumnNameWithoutAlias(),
		}), nil
	}
	if fromQuery {
		return b.dag.AddColumn(column.WithTypeAndName{
			Type: types.SetType,
			Name: rhs.ColumnNameWithoutAlias(),
		}), nil
	}
	return b.visit(rhs)
}

// ElementTypes splits the type of an IN left-hand side into the element
// types of the set it is tested against.
func ElementTypes(t types.DataType) []types.DataType {
	if tup, ok := t.(types.Tuple); ok {
		return append([]types.DataType(nil), tup.Elems...)
	}
	return []types.DataType{t}
}
