package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldKind tags the value held by a Field.
type FieldKind int

const (
	KindNull FieldKind = iota
	KindUInt64
	KindInt64
	KindFloat64
	KindString
	KindTuple
	KindArray
)

func (k FieldKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindUInt64:
		return "UInt64"
	case KindInt64:
		return "Int64"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindTuple:
		return "Tuple"
	case KindArray:
		return "Array"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Field is a tagged scalar (or composite) value.
// The zero Field is NULL.
type Field struct {
	kind  FieldKind
	u     uint64
	i     int64
	f     float64
	s     string
	elems []Field
}

// Null returns the NULL field.
func Null() Field { return Field{} }

func NewUInt64(v uint64) Field   { return Field{kind: KindUInt64, u: v} }
func NewInt64(v int64) Field     { return Field{kind: KindInt64, i: v} }
func NewFloat64(v float64) Field { return Field{kind: KindFloat64, f: v} }
func NewString(v string) Field   { return Field{kind: KindString, s: v} }

// NewTuple builds a tuple field. The elements are copied.
func NewTuple(elems ...Field) Field {
	return Field{kind: KindTuple, elems: append([]Field(nil), elems...)}
}

// NewArray builds an array field. The elements are copied.
func NewArray(elems ...Field) Field {
	return Field{kind: KindArray, elems: append([]Field(nil), elems...)}
}

func (f Field) Kind() FieldKind { return f.kind }
func (f Field) IsNull() bool    { return f.kind == KindNull }

// AsUInt64 returns the value of a KindUInt64 field.
func (f Field) AsUInt64() uint64 { return f.u }

// AsInt64 returns the value of a KindInt64 field.
func (f Field) AsInt64() int64 { return f.i }

// AsFloat64 returns the value of a KindFloat64 field.
func (f Field) AsFloat64() float64 { return f.f }

// AsString returns the value of a KindString field.
func (f Field) AsString() string { return f.s }

// Elems returns the elements of a tuple or array field.
func (f Field) Elems() []Field { return f.elems }

// Equal reports whether two fields hold the same kind and value.
func (f Field) Equal(o Field) bool {
	if f.kind != o.kind {
		return false
	}
	switch f.kind {
	case KindNull:
		return true
	case KindUInt64:
		return f.u == o.u
	case KindInt64:
		return f.i == o.i
	case KindFloat64:
		return f.f == o.f || (math.IsNaN(f.f) && math.IsNaN(o.f))
	case KindString:
		return f.s == o.s
	case KindTuple, KindArray:
		if len(f.elems) != len(o.elems) {
			return false
		}
		for i := range f.elems {
			if !f.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the field the way it appears in a column name.
func (f Field) String() string { return FieldToString(f) }

// FieldToString renders a value as SQL literal text. This is the text used
// for literal column names, so it must be deterministic.
//
//	NULL, 42, -3, 1.5, 'it\'s', (1, 'a'), [1, 2]
func FieldToString(f Field) string {
	var b strings.Builder
	writeField(&b, f)
	return b.String()
}

func writeField(b *strings.Builder, f Field) {
	switch f.kind {
	case KindNull:
		b.WriteString("NULL")
	case KindUInt64:
		b.WriteString(strconv.FormatUint(f.u, 10))
	case KindInt64:
		b.WriteString(strconv.FormatInt(f.i, 10))
	case KindFloat64:
		b.WriteString(formatFloat(f.f))
	case KindString:
		writeQuoted(b, f.s)
	case KindTuple:
		b.WriteByte('(')
		writeElems(b, f.elems)
		b.WriteByte(')')
	case KindArray:
		b.WriteByte('[')
		writeElems(b, f.elems)
		b.WriteByte(']')
	}
}

func writeElems(b *strings.Builder, elems []Field) {
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		writeField(b, e)
	}
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
}

// Dump renders the field together with its kind, e.g. "UInt64_5".
// Unlike FieldToString, values of different kinds never collide.
func Dump(f Field) string {
	var b strings.Builder
	writeDump(&b, f)
	return b.String()
}

func writeDump(b *strings.Builder, f Field) {
	switch f.kind {
	case KindNull:
		b.WriteString("NULL")
	case KindTuple, KindArray:
		b.WriteString(f.kind.String())
		b.WriteString("_(")
		for i, e := range f.elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDump(b, e)
		}
		b.WriteByte(')')
	default:
		b.WriteString(f.kind.String())
		b.WriteByte('_')
		writeField(b, f)
	}
}

// Truthy reports whether the value counts as true in a boolean context.
// NULL, zero and the empty string are false.
func Truthy(f Field) bool {
	switch f.kind {
	case KindUInt64:
		return f.u != 0
	case KindInt64:
		return f.i != 0
	case KindFloat64:
		return f.f != 0
	case KindString:
		return f.s != ""
	case KindTuple, KindArray:
		return len(f.elems) > 0
	}
	return false
}

// FromAny converts a decoded YAML/JSON value into a Field.
// Integers become UInt64 when non-negative and Int64 otherwise; lists become tuples.
func FromAny(v any) (Field, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case int:
		return fromInt64(int64(val)), nil
	case int64:
		return fromInt64(val), nil
	case uint64:
		return NewUInt64(val), nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return fromInt64(int64(val)), nil
		}
		return NewFloat64(val), nil
	case string:
		return NewString(val), nil
	case bool:
		if val {
			return NewUInt64(1), nil
		}
		return NewUInt64(0), nil
	case []any:
		elems := make([]Field, len(val))
		for i, e := range val {
			f, err := FromAny(e)
			if err != nil {
				return Field{}, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = f
		}
		return NewTuple(elems...), nil
	default:
		return Field{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromInt64(v int64) Field {
	if v >= 0 {
		return NewUInt64(uint64(v))
	}
	return NewInt64(v)
}
