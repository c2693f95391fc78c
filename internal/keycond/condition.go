package keycond

import (
	"log/slog"
	"strings"

	"github.com/roach88/keyprune/internal/keydesc"
	"github.com/roach88/keyprune/internal/rpn"
	"github.com/roach88/keyprune/internal/sets"
	"github.com/roach88/keyprune/internal/types"
)

// Condition is a predicate restated over the columns of a sorting key.
type Condition struct {
	key *keydesc.KeyDescription
	rpn []Element
}

// comparisons maps a comparison to its range builder and to the comparison
// with its operands swapped.
var comparisons = map[string]struct {
	mirror string
	build  func(v types.Field) (Function, Range)
}{
	"equals":          {"equals", func(v types.Field) (Function, Range) { return FunctionInRange, Point(v) }},
	"notEquals":       {"notEquals", func(v types.Field) (Function, Range) { return FunctionNotInRange, Point(v) }},
	"less":            {"greater", func(v types.Field) (Function, Range) { return FunctionInRange, RightBounded(v, false) }},
	"greater":         {"less", func(v types.Field) (Function, Range) { return FunctionInRange, LeftBounded(v, false) }},
	"lessOrEquals":    {"greaterOrEquals", func(v types.Field) (Function, Range) { return FunctionInRange, RightBounded(v, true) }},
	"greaterOrEquals": {"lessOrEquals", func(v types.Field) (Function, Range) { return FunctionInRange, LeftBounded(v, true) }},
}

// Analyze restates predicate over the columns of key.
//
// Comparisons of a key column with a constant become ranges, IN and NOT IN
// over key columns become set elements, constant predicates become
// ALWAYS_TRUE or ALWAYS_FALSE, and everything else is UNKNOWN. A key
// column is recognized by canonical name; for a legacy key, also by its
// legacy name.
func Analyze(predicate rpn.Node, key *keydesc.KeyDescription) *Condition {
	ctx := predicate.TreeContext()
	a := &analyzer{
		key:      key,
		settings: ctx.QueryContext().Settings,
		sets:     ctx.PreparedSets(),
		log:      ctx.QueryContext().Log(),
	}
	elements := rpn.BuildRPN(predicate, rpn.ElementFactory[Element]{
		ExtractAtom: a.extractAtom,
		And:         func() Element { return Element{Function: FunctionAnd} },
		Or:          func() Element { return Element{Function: FunctionOr} },
		Not:         func() Element { return Element{Function: FunctionNot} },
		Unknown:     func() Element { return Element{Function: FunctionUnknown} },
	})
	return &Condition{key: key, rpn: elements}
}

func (c *Condition) Key() *keydesc.KeyDescription { return c.key }

// RPN returns the elements in reverse Polish notation.
func (c *Condition) RPN() []Element {
	return append([]Element(nil), c.rpn...)
}

func (c *Condition) String() string {
	parts := make([]string, len(c.rpn))
	for i, e := range c.rpn {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// AlwaysUnknownOrTrue reports whether the condition can never exclude a key
// range, making the key useless for this predicate.
func (c *Condition) AlwaysUnknownOrTrue() bool {
	var stack []bool
	pop := func() bool {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	for _, e := range c.rpn {
		switch e.Function {
		case FunctionUnknown, FunctionAlwaysTrue:
			stack = append(stack, true)
		case FunctionInRange, FunctionNotInRange, FunctionInSet, FunctionNotInSet, FunctionAlwaysFalse:
			stack = append(stack, false)
		case FunctionNot:
		case FunctionAnd:
			x, y := pop(), pop()
			stack = append(stack, x && y)
		case FunctionOr:
			x, y := pop(), pop()
			stack = append(stack, x || y)
		}
	}
	return len(stack) == 0 || stack[0]
}

type analyzer struct {
	key      *keydesc.KeyDescription
	settings rpn.Settings
	sets     *sets.Registry
	log      *slog.Logger
}

func (a *analyzer) extractAtom(n rpn.Node) (Element, bool) {
	e, ok := a.atom(n)
	if ok {
		a.log.Debug("key condition atom",
			"expression", n.ColumnName(),
			"function", e.Function.String(),
			"key_column", e.KeyColumn)
	}
	return e, ok
}

func (a *analyzer) atom(n rpn.Node) (Element, bool) {
	if n.IsConstant() {
		v, _, ok := n.TryGetConstant()
		if !ok {
			return Element{}, false
		}
		if types.Truthy(v) {
			return Element{Function: FunctionAlwaysTrue}, true
		}
		return Element{Function: FunctionAlwaysFalse}, true
	}

	fn, ok := n.ToFunctionNodeOrNull()
	if !ok || fn.ArgumentsSize() != 2 {
		return Element{}, false
	}

	name := fn.FunctionName()
	switch name {
	case "in", "notIn":
		return a.membership(fn, name == "notIn")
	}

	cmp, ok := comparisons[name]
	if !ok {
		return Element{}, false
	}
	left, right := fn.ArgumentAt(0), fn.ArgumentAt(1)
	if k, ok := a.keyColumn(left); ok {
		if v, ok := nonNullConstant(right); ok {
			f, r := cmp.build(v)
			return Element{Function: f, KeyColumn: k, Range: r}, true
		}
	}
	if k, ok := a.keyColumn(right); ok {
		if v, ok := nonNullConstant(left); ok {
			f, r := comparisons[cmp.mirror].build(v)
			return Element{Function: f, KeyColumn: k, Range: r}, true
		}
	}
	return Element{}, false
}

func (a *analyzer) membership(fn rpn.FunctionNode, negated bool) (Element, bool) {
	lhs, rhs := fn.ArgumentAt(0), fn.ArgumentAt(1)

	var (
		mapping  []sets.KeyTuplePositionMapping
		keyTypes []types.DataType
	)
	if k, ok := a.keyColumn(lhs); ok {
		mapping = append(mapping, sets.KeyTuplePositionMapping{TupleIndex: 0, KeyIndex: k})
		keyTypes = append(keyTypes, a.key.DataTypes[k])
	} else if tuple, ok := lhs.ToFunctionNodeOrNull(); ok && tuple.FunctionName() == "tuple" {
		for i, arg := range tuple.Arguments() {
			if k, ok := a.keyColumn(arg); ok {
				mapping = append(mapping, sets.KeyTuplePositionMapping{TupleIndex: i, KeyIndex: k})
				keyTypes = append(keyTypes, a.key.DataTypes[k])
			}
		}
	}
	if len(mapping) == 0 {
		return Element{}, false
	}

	if a.settings.TransformNullIn {
		for _, t := range keyTypes {
			if types.IsNullable(t) {
				return Element{}, false
			}
		}
	}

	set := rhs.TryGetPreparedSetForKey(mapping, keyTypes)
	if set == nil {
		return Element{}, false
	}
	if !a.settings.UseIndexForInWithSubqueries && a.sets.FromSubquery(set) {
		return Element{}, false
	}

	f := FunctionInSet
	if negated {
		f = FunctionNotInSet
	}
	return Element{Function: f, KeyColumn: mapping[0].KeyIndex, Set: set, SetMapping: mapping}, true
}

// keyColumn returns the position of the key column n computes.
func (a *analyzer) keyColumn(n rpn.Node) (int, bool) {
	if k, ok := a.key.Position(n.ColumnName()); ok {
		return k, true
	}
	if a.key.Legacy {
		return a.key.Position(n.ColumnNameWithModuloLegacy())
	}
	return 0, false
}

func nonNullConstant(n rpn.Node) (types.Field, bool) {
	if !n.IsConstant() {
		return types.Field{}, false
	}
	v, _, ok := n.TryGetConstant()
	if !ok || v.IsNull() {
		return types.Field{}, false
	}
	return v, true
}
