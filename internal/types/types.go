package types

import (
	"fmt"
	"strings"
)

// DataType is a sealed interface describing the type of a column or value.
// Only the types in this package implement it.
//
// Type names are canonical: two types are equal iff their names are equal.
type DataType interface {
	Name() string
	dataType() // Sealed
}

// Basic is a scalar type without parameters.
type Basic int

const (
	Nothing Basic = iota
	UInt8
	UInt16
	UInt32
	UInt64
	Int8
	Int16
	Int32
	Int64
	Float64
	String
	SetType
)

var basicNames = [...]string{
	Nothing: "Nothing",
	UInt8:   "UInt8",
	UInt16:  "UInt16",
	UInt32:  "UInt32",
	UInt64:  "UInt64",
	Int8:    "Int8",
	Int16:   "Int16",
	Int32:   "Int32",
	Int64:   "Int64",
	Float64: "Float64",
	String:  "String",
	SetType: "Set",
}

func (Basic) dataType() {}

// Name returns the canonical type name.
func (b Basic) Name() string {
	if int(b) < 0 || int(b) >= len(basicNames) {
		return fmt.Sprintf("Basic(%d)", int(b))
	}
	return basicNames[b]
}

func (b Basic) String() string { return b.Name() }

// IsUnsigned reports whether b is one of the UIntN types.
func (b Basic) IsUnsigned() bool { return b >= UInt8 && b <= UInt64 }

// IsSigned reports whether b is one of the IntN types.
func (b Basic) IsSigned() bool { return b >= Int8 && b <= Int64 }

// Nullable wraps a type to admit NULL values.
type Nullable struct {
	Nested DataType
}

func (Nullable) dataType() {}

func (n Nullable) Name() string { return "Nullable(" + n.Nested.Name() + ")" }

// Tuple is a fixed-arity product type.
type Tuple struct {
	Elems []DataType
}

func (Tuple) dataType() {}

func (t Tuple) Name() string {
	names := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		names[i] = e.Name()
	}
	return "Tuple(" + strings.Join(names, ", ") + ")"
}

// Array is a variable-length sequence of Elem.
type Array struct {
	Elem DataType
}

func (Array) dataType() {}

func (a Array) Name() string { return "Array(" + a.Elem.Name() + ")" }

// Equal reports whether two types are identical.
// A nil type is only equal to another nil type.
func Equal(a, b DataType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// IsNullable reports whether t is wrapped in Nullable.
func IsNullable(t DataType) bool {
	_, ok := t.(Nullable)
	return ok
}

// RemoveNullable strips one Nullable wrapper, if present.
func RemoveNullable(t DataType) DataType {
	if n, ok := t.(Nullable); ok {
		return n.Nested
	}
	return t
}

// MakeNullable wraps t in Nullable unless it already is.
// Tuples and arrays cannot be nullable and are returned unchanged.
func MakeNullable(t DataType) DataType {
	switch t.(type) {
	case Nullable, Tuple, Array:
		return t
	}
	return Nullable{Nested: t}
}

// IsNumeric reports whether t (ignoring nullability) is an integer or float type.
func IsNumeric(t DataType) bool {
	b, ok := RemoveNullable(t).(Basic)
	if !ok {
		return false
	}
	return b.IsUnsigned() || b.IsSigned() || b == Float64
}

// Parse parses a canonical type name such as "Nullable(UInt64)" or
// "Tuple(UInt8, String)".
func Parse(name string) (DataType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty type name")
	}

	open := strings.IndexByte(name, '(')
	if open < 0 {
		for i, n := range basicNames {
			if n == name {
				return Basic(i), nil
			}
		}
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if !strings.HasSuffix(name, ")") {
		return nil, fmt.Errorf("unbalanced parentheses in type %q", name)
	}

	head := name[:open]
	args, err := splitTopLevel(name[open+1 : len(name)-1])
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", name, err)
	}

	switch head {
	case "Nullable", "Array":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects exactly one argument, got %d", head, len(args))
		}
		nested, err := Parse(args[0])
		if err != nil {
			return nil, err
		}
		if head == "Array" {
			return Array{Elem: nested}, nil
		}
		switch nested.(type) {
		case Nullable, Tuple, Array:
			return nil, fmt.Errorf("nested type %s cannot be inside Nullable", nested.Name())
		}
		return Nullable{Nested: nested}, nil
	case "Tuple":
		elems := make([]DataType, len(args))
		for i, a := range args {
			elems[i], err = Parse(a)
			if err != nil {
				return nil, err
			}
		}
		return Tuple{Elems: elems}, nil
	default:
		return nil, fmt.Errorf("unknown parametric type %q", head)
	}
}

// MustParse is like Parse but panics on error.
// Use only in tests or with constant input.
func MustParse(name string) DataType {
	t, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return t
}

// splitTopLevel splits s on commas that are not nested in parentheses.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses")
	}
	if last := strings.TrimSpace(s[start:]); last != "" || len(parts) > 0 {
		parts = append(parts, last)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty type argument")
		}
	}
	return parts, nil
}
