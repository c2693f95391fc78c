package keycond

import (
	"fmt"
	"strings"

	"github.com/roach88/keyprune/internal/sets"
	"github.com/roach88/keyprune/internal/types"
)

// Function is the kind of an RPN element.
type Function int

const (
	FunctionUnknown Function = iota
	FunctionInRange
	FunctionNotInRange
	FunctionInSet
	FunctionNotInSet
	FunctionAnd
	FunctionOr
	FunctionNot
	FunctionAlwaysTrue
	FunctionAlwaysFalse
)

var functionNames = [...]string{
	FunctionUnknown:     "UNKNOWN",
	FunctionInRange:     "IN_RANGE",
	FunctionNotInRange:  "NOT_IN_RANGE",
	FunctionInSet:       "IN_SET",
	FunctionNotInSet:    "NOT_IN_SET",
	FunctionAnd:         "AND",
	FunctionOr:          "OR",
	FunctionNot:         "NOT",
	FunctionAlwaysTrue:  "ALWAYS_TRUE",
	FunctionAlwaysFalse: "ALWAYS_FALSE",
}

func (f Function) String() string {
	if int(f) < 0 || int(f) >= len(functionNames) {
		return fmt.Sprintf("Function(%d)", int(f))
	}
	return functionNames[f]
}

// Bound is one end of a Range. An unbounded end has Infinite set.
type Bound struct {
	Value    types.Field
	Included bool
	Infinite bool
}

// Range is an interval of key values.
type Range struct {
	Left, Right Bound
}

// Point is the range holding exactly v.
func Point(v types.Field) Range {
	return Range{Left: Bound{Value: v, Included: true}, Right: Bound{Value: v, Included: true}}
}

// LeftBounded is [v, +Inf) or (v, +Inf).
func LeftBounded(v types.Field, included bool) Range {
	return Range{Left: Bound{Value: v, Included: included}, Right: Bound{Infinite: true}}
}

// RightBounded is (-Inf, v] or (-Inf, v).
func RightBounded(v types.Field, included bool) Range {
	return Range{Left: Bound{Infinite: true}, Right: Bound{Value: v, Included: included}}
}

func (r Range) String() string {
	var b strings.Builder
	if r.Left.Infinite {
		b.WriteString("(-Inf")
	} else {
		if r.Left.Included {
			b.WriteByte('[')
		} else {
			b.WriteByte('(')
		}
		b.WriteString(types.FieldToString(r.Left.Value))
	}
	b.WriteString(", ")
	if r.Right.Infinite {
		b.WriteString("+Inf)")
	} else {
		b.WriteString(types.FieldToString(r.Right.Value))
		if r.Right.Included {
			b.WriteByte(']')
		} else {
			b.WriteByte(')')
		}
	}
	return b.String()
}

// Element is one entry of a key condition in reverse Polish notation.
type Element struct {
	Function Function

	// KeyColumn is the key column a range applies to.
	KeyColumn int
	Range     Range

	// Set and SetMapping describe IN_SET and NOT_IN_SET.
	Set        *sets.Set
	SetMapping []sets.KeyTuplePositionMapping
}

func (e Element) String() string {
	switch e.Function {
	case FunctionInRange, FunctionNotInRange:
		op := "in"
		if e.Function == FunctionNotInRange {
			op = "not in"
		}
		return fmt.Sprintf("(column %d %s %s)", e.KeyColumn, op, e.Range)
	case FunctionInSet, FunctionNotInSet:
		op := "in"
		if e.Function == FunctionNotInSet {
			op = "notIn"
		}
		cols := make([]string, len(e.SetMapping))
		for i, m := range e.SetMapping {
			cols[i] = fmt.Sprintf("column %d", m.KeyIndex)
		}
		target := cols[0]
		if len(cols) > 1 {
			target = "(" + strings.Join(cols, ", ") + ")"
		}
		return fmt.Sprintf("(%s %s %d-element set)", target, op, e.Set.Len())
	case FunctionAnd:
		return "and"
	case FunctionOr:
		return "or"
	case FunctionNot:
		return "not"
	case FunctionAlwaysTrue:
		return "true"
	case FunctionAlwaysFalse:
		return "false"
	}
	return "unknown"
}
