package dag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/functions"
	"github.com/roach88/keyprune/internal/types"
)

// ActionType tags the kind of a graph node.
type ActionType int

const (
	// ActionInput reads a column of the source block.
	ActionInput ActionType = iota
	// ActionColumn is a column known at compile time, usually a constant.
	ActionColumn
	// ActionAlias renames its single child.
	ActionAlias
	// ActionArrayJoin unnests its single array child.
	ActionArrayJoin
	// ActionFunction applies a function to its children.
	ActionFunction
)

func (t ActionType) String() string {
	switch t {
	case ActionInput:
		return "INPUT"
	case ActionColumn:
		return "COLUMN"
	case ActionAlias:
		return "ALIAS"
	case ActionArrayJoin:
		return "ARRAY_JOIN"
	case ActionFunction:
		return "FUNCTION"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Node is a node of an ActionsDAG. Nodes are owned by their graph and must
// not be modified after creation.
type Node struct {
	Type       ActionType
	ResultName string
	ResultType types.DataType

	// Column is set for COLUMN nodes and for FUNCTION nodes folded to a
	// constant. It is nil otherwise.
	Column column.Column

	Children []*Node

	// Function is set for FUNCTION nodes.
	Function *functions.Base

	id int
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %s :: %s", n.Type, n.ResultName, n.ResultType.Name())
}

// ActionsDAG is a graph of actions computing expressions from input columns.
//
// Structurally identical nodes are shared: adding the same action twice
// returns the node created first.
type ActionsDAG struct {
	nodes   []*Node
	outputs []*Node
	funcs   *functions.Registry
	memo    map[string]*Node
}

// New creates an empty graph resolving function names in funcs, or in
// functions.Default() when funcs is nil.
func New(funcs *functions.Registry) *ActionsDAG {
	if funcs == nil {
		funcs = functions.Default()
	}
	return &ActionsDAG{funcs: funcs, memo: make(map[string]*Node)}
}

func (d *ActionsDAG) add(key string, n *Node) *Node {
	if existing, ok := d.memo[key]; ok {
		return existing
	}
	n.id = len(d.nodes)
	d.nodes = append(d.nodes, n)
	d.memo[key] = n
	return n
}

func childKey(children []*Node) string {
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = strconv.Itoa(c.id)
	}
	return strings.Join(ids, ",")
}

// AddInput adds an input column. Inputs are identified by name.
func (d *ActionsDAG) AddInput(name string, t types.DataType) (*Node, error) {
	key := "input|" + name
	if existing, ok := d.memo[key]; ok {
		if !types.Equal(existing.ResultType, t) {
			return nil, fmt.Errorf("input %s already has type %s, not %s", name, existing.ResultType.Name(), t.Name())
		}
		return existing, nil
	}
	return d.add(key, &Node{Type: ActionInput, ResultName: name, ResultType: t}), nil
}

// AddColumn adds a compile-time column. c.Column may be nil for a column
// whose value is not available yet.
func (d *ActionsDAG) AddColumn(c column.WithTypeAndName) *Node {
	key := "column|" + c.Name + "|" + c.Type.Name() + "|" + column.Describe(c.Column)
	if s, ok := column.SetOf(c.Column); ok {
		key += "|" + s.ID.String()
	}
	return d.add(key, &Node{Type: ActionColumn, ResultName: c.Name, ResultType: c.Type, Column: c.Column})
}

// AddAlias renames child. The alias carries the child's type and column.
func (d *ActionsDAG) AddAlias(child *Node, alias string) *Node {
	key := "alias|" + alias + "|" + childKey([]*Node{child})
	return d.add(key, &Node{
		Type:       ActionAlias,
		ResultName: alias,
		ResultType: child.ResultType,
		Column:     child.Column,
		Children:   []*Node{child},
	})
}

// AddArrayJoin unnests child, which must be an array.
func (d *ActionsDAG) AddArrayJoin(child *Node, resultName string) (*Node, error) {
	arr, ok := types.RemoveNullable(child.ResultType).(types.Array)
	if !ok {
		return nil, fmt.Errorf("arrayJoin requires an array argument, got %s", child.ResultType.Name())
	}
	if resultName == "" {
		resultName = "arrayJoin(" + child.ResultName + ")"
	}
	key := "arrayJoin|" + resultName + "|" + childKey([]*Node{child})
	return d.add(key, &Node{
		Type:       ActionArrayJoin,
		ResultName: resultName,
		ResultType: arr.Elem,
		Children:   []*Node{child},
	}), nil
}

// AddFunction adds a call of fn on children. An empty resultName defaults to
// "name(child, ...)" over the children's result names.
//
// When fn can be folded and every child is a scalar constant, the node gets
// the folded value as a constant column. A folding failure leaves the call
// unfolded.
func (d *ActionsDAG) AddFunction(fn *functions.Base, children []*Node, resultName string) (*Node, error) {
	argTypes := make([]types.DataType, len(children))
	for i, c := range children {
		argTypes[i] = c.ResultType
	}
	resultType, err := fn.ResultType(argTypes)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name, err)
	}

	if resultName == "" {
		names := make([]string, len(children))
		for i, c := range children {
			names[i] = c.ResultName
		}
		resultName = fn.Name + "(" + strings.Join(names, ", ") + ")"
	}

	key := "function|" + fn.Name + "|" + resultName + "|" + childKey(children)
	if existing, ok := d.memo[key]; ok {
		return existing, nil
	}

	n := &Node{
		Type:       ActionFunction,
		ResultName: resultName,
		ResultType: resultType,
		Children:   append([]*Node(nil), children...),
		Function:   fn,
	}
	if v, ok := fold(fn, children); ok {
		n.Column = column.NewConst(resultType, v, 1)
	}
	return d.add(key, n), nil
}

// AddFunctionByName resolves name in the graph's function registry and adds
// the call.
func (d *ActionsDAG) AddFunctionByName(name string, children []*Node, resultName string) (*Node, error) {
	fn, ok := d.funcs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown function %s", name)
	}
	return d.AddFunction(fn, children, resultName)
}

func fold(fn *functions.Base, children []*Node) (types.Field, bool) {
	if !fn.CanFold() {
		return types.Field{}, false
	}
	args := make([]types.Field, len(children))
	for i, c := range children {
		v, ok := column.ConstValue(c.Column)
		if !ok {
			return types.Field{}, false
		}
		args[i] = v
	}
	v, err := fn.Fold(args)
	if err != nil {
		return types.Field{}, false
	}
	return v, true
}

// AddOutput marks n as a result of the graph.
func (d *ActionsDAG) AddOutput(n *Node) {
	for _, o := range d.outputs {
		if o == n {
			return
		}
	}
	d.outputs = append(d.outputs, n)
}

// Outputs returns the result nodes in the order they were added.
func (d *ActionsDAG) Outputs() []*Node {
	return append([]*Node(nil), d.outputs...)
}

// Nodes returns every node in creation order; children precede parents.
func (d *ActionsDAG) Nodes() []*Node {
	return append([]*Node(nil), d.nodes...)
}

// Functions returns the registry function names are resolved in.
func (d *ActionsDAG) Functions() *functions.Registry {
	return d.funcs
}

// Dump renders the graph one node per line, for diagnostics and golden
// files.
func (d *ActionsDAG) Dump() string {
	var b strings.Builder
	for _, n := range d.nodes {
		fmt.Fprintf(&b, "%d: %s", n.id, n)
		if len(n.Children) > 0 {
			ids := make([]string, len(n.Children))
			for i, c := range n.Children {
				ids[i] = strconv.Itoa(c.id)
			}
			fmt.Fprintf(&b, " <- [%s]", strings.Join(ids, ", "))
		}
		if n.Column != nil {
			fmt.Fprintf(&b, " = %s", column.Describe(n.Column))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
