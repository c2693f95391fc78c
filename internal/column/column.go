package column

import (
	"fmt"

	"github.com/roach88/keyprune/internal/sets"
	"github.com/roach88/keyprune/internal/types"
)

// Column is a sealed interface over the column kinds an expression node can
// carry.
//
// Column kinds:
//   - Vector: materialized values of one type
//   - Const: a single value repeated Rows times
//   - Set: a prepared membership set (the right-hand side of IN)
type Column interface {
	Len() int
	column() // Sealed
}

// Vector holds one value per row.
type Vector struct {
	Type   types.DataType
	Values []types.Field
}

func (*Vector) column() {}

func (v *Vector) Len() int { return len(v.Values) }

// Const repeats the single value of Data for Rows rows.
//
// Data is normally a one-row Vector. It may also wrap a Set column, which is
// how a prepared set appears as a constant argument of IN.
type Const struct {
	Data Column
	Rows int
}

func (*Const) column() {}

func (c *Const) Len() int { return c.Rows }

// Set wraps a prepared set.
type Set struct {
	Data *sets.Set
}

func (*Set) column() {}

// Len is 1: a set column is a single value.
func (*Set) Len() int { return 1 }

// NewConst builds a constant column holding v for rows rows.
func NewConst(t types.DataType, v types.Field, rows int) *Const {
	return &Const{Data: &Vector{Type: t, Values: []types.Field{v}}, Rows: rows}
}

// NewConstSet wraps a prepared set in a one-row constant column.
func NewConstSet(s *sets.Set) *Const {
	return &Const{Data: &Set{Data: s}, Rows: 1}
}

// IsConst reports whether c is a Const column.
func IsConst(c Column) bool {
	_, ok := c.(*Const)
	return ok
}

// ConstValue returns the value of a Const column over a Vector.
// It reports false for any other column, including Const(Set).
func ConstValue(c Column) (types.Field, bool) {
	cc, ok := c.(*Const)
	if !ok {
		return types.Field{}, false
	}
	v, ok := cc.Data.(*Vector)
	if !ok || len(v.Values) == 0 {
		return types.Field{}, false
	}
	return v.Values[0], true
}

// SetOf returns the prepared set carried by c, unwrapping a Const first.
func SetOf(c Column) (*sets.Set, bool) {
	if cc, ok := c.(*Const); ok {
		c = cc.Data
	}
	s, ok := c.(*Set)
	if !ok || s.Data == nil {
		return nil, false
	}
	return s.Data, true
}

// Describe renders c for diagnostics, e.g. "Const(UInt8_5)".
func Describe(c Column) string {
	switch c := c.(type) {
	case nil:
		return "<none>"
	case *Vector:
		return fmt.Sprintf("Vector(%s, %d rows)", c.Type.Name(), len(c.Values))
	case *Const:
		if v, ok := ConstValue(c); ok {
			return "Const(" + types.Dump(v) + ")"
		}
		return "Const(" + Describe(c.Data) + ")"
	case *Set:
		if c.Data == nil {
			return "Set(<nil>)"
		}
		return c.Data.String()
	}
	return "<unknown>"
}
