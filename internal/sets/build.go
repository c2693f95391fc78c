package sets

import (
	"fmt"

	"github.com/roach88/keyprune/internal/types"
)

// FromLiteral builds a finished set from the value of an IN right-hand side
// literal, for a left-hand side with the given element types.
//
// With a single element type, every element of a tuple or array literal is
// a row and a scalar literal is a single row:
//
//	x IN (1, 2, 3)   -> rows 1, 2, 3
//	x IN 5           -> row 5
//
// With several element types, a tuple of tuples yields one row per inner
// tuple and a flat tuple of matching arity is a single row:
//
//	(a, b) IN ((1, 2), (3, 4)) -> rows (1, 2), (3, 4)
//	(a, b) IN (1, 2)           -> row (1, 2)
func FromLiteral(value types.Field, elementTypes []types.DataType, opts ...Option) (*Set, error) {
	if len(elementTypes) == 0 {
		return nil, fmt.Errorf("set needs at least one element type")
	}
	s := New(elementTypes, opts...)

	rows, err := literalRows(value, len(elementTypes))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := s.Insert(row...); err != nil {
			return nil, err
		}
	}
	s.Finish()
	return s, nil
}

func literalRows(value types.Field, arity int) ([][]types.Field, error) {
	isList := value.Kind() == types.KindTuple || value.Kind() == types.KindArray

	if arity == 1 {
		if !isList {
			return [][]types.Field{{value}}, nil
		}
		rows := make([][]types.Field, len(value.Elems()))
		for i, e := range value.Elems() {
			rows[i] = []types.Field{e}
		}
		return rows, nil
	}

	if !isList {
		return nil, fmt.Errorf("expected a tuple of %d values, got %s", arity, value)
	}
	if allTuples(value.Elems()) {
		rows := make([][]types.Field, len(value.Elems()))
		for i, e := range value.Elems() {
			if len(e.Elems()) != arity {
				return nil, fmt.Errorf("row %d has %d values, want %d", i, len(e.Elems()), arity)
			}
			rows[i] = e.Elems()
		}
		return rows, nil
	}
	if len(value.Elems()) == arity {
		return [][]types.Field{value.Elems()}, nil
	}
	return nil, fmt.Errorf("expected a tuple of %d values, got %s", arity, value)
}

func allTuples(fs []types.Field) bool {
	if len(fs) == 0 {
		return false
	}
	for _, f := range fs {
		if f.Kind() != types.KindTuple {
			return false
		}
	}
	return true
}
