package ast

import (
	"fmt"
	"strings"

	"github.com/roach88/keyprune/internal/types"
)

// Kind tags each syntax node with its variant. It is fixed at construction
// so callers switch on it instead of probing concrete types.
type Kind int

const (
	KindFunction Kind = iota + 1
	KindLiteral
	KindIdentifier
	KindTableIdentifier
	KindSubquery
	KindExpressionList
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "Function"
	case KindLiteral:
		return "Literal"
	case KindIdentifier:
		return "Identifier"
	case KindTableIdentifier:
		return "TableIdentifier"
	case KindSubquery:
		return "Subquery"
	case KindExpressionList:
		return "ExpressionList"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is a node of a parsed expression.
//
// This is a sealed interface - only types in this package implement it.
//
// Node types:
//   - Function: name(arguments...)
//   - Literal: a constant value
//   - Identifier: a column reference
//   - TableIdentifier: db.table on the right-hand side of IN
//   - Subquery: (SELECT ...)
//   - ExpressionList: the argument list of a function
type Node interface {
	Kind() Kind
	Children() []Node

	// ColumnName is the name of the column the expression produces. It
	// honors PreferAliasToColumnName on the node and its descendants.
	ColumnName() string

	// ColumnNameWithoutAlias never substitutes aliases.
	ColumnNameWithoutAlias() string

	appendColumnName(b *strings.Builder, useAlias bool)
	writeHash(h *hasher)
	clone() Node
}

// WithAlias carries the optional "AS alias" of an expression.
//
// When PreferAliasToColumnName is set, ColumnName returns the alias instead
// of the expression text. ColumnNameWithoutAlias ignores it.
type WithAlias struct {
	Alias                   string
	PreferAliasToColumnName bool
}

func (w *WithAlias) aliasInfo() *WithAlias { return w }

type aliased interface {
	aliasInfo() *WithAlias
}

// AliasOf returns the alias of n, or "" when n has none.
func AliasOf(n Node) string {
	if a, ok := n.(aliased); ok {
		return a.aliasInfo().Alias
	}
	return ""
}

// SetAlias sets the alias of n and returns n.
// ExpressionList cannot carry an alias and is returned unchanged.
func SetAlias(n Node, alias string) Node {
	if a, ok := n.(aliased); ok {
		a.aliasInfo().Alias = alias
	}
	return n
}

// appendAliasAware writes either the alias or the expression text.
func appendAliasAware(b *strings.Builder, w *WithAlias, useAlias bool, impl func()) {
	if useAlias && w.PreferAliasToColumnName && w.Alias != "" {
		b.WriteString(w.Alias)
		return
	}
	impl()
}

// Function is a call: name(arguments...).
//
// Arguments is nil when the call was built without an argument list.
type Function struct {
	WithAlias
	Name      string
	Arguments *ExpressionList
}

// NewFunction builds a call with an (possibly empty) argument list.
func NewFunction(name string, args ...Node) *Function {
	return &Function{Name: name, Arguments: &ExpressionList{Items: args}}
}

func (*Function) Kind() Kind { return KindFunction }

func (f *Function) Children() []Node {
	if f.Arguments == nil {
		return nil
	}
	return []Node{f.Arguments}
}

// Args returns the call arguments, or nil when there is no argument list.
func (f *Function) Args() []Node {
	if f.Arguments == nil {
		return nil
	}
	return f.Arguments.Items
}

func (f *Function) ColumnName() string             { return columnName(f, true) }
func (f *Function) ColumnNameWithoutAlias() string { return columnName(f, false) }

func (f *Function) appendColumnName(b *strings.Builder, useAlias bool) {
	appendAliasAware(b, &f.WithAlias, useAlias, func() {
		b.WriteString(f.Name)
		b.WriteByte('(')
		if f.Arguments != nil {
			f.Arguments.appendColumnName(b, useAlias)
		}
		b.WriteByte(')')
	})
}

func (f *Function) clone() Node {
	c := &Function{WithAlias: f.WithAlias, Name: f.Name}
	if f.Arguments != nil {
		c.Arguments = f.Arguments.clone().(*ExpressionList)
	}
	return c
}

// ExpressionList is an ordered list of expressions.
type ExpressionList struct {
	Items []Node
}

func (*ExpressionList) Kind() Kind         { return KindExpressionList }
func (l *ExpressionList) Children() []Node { return l.Items }

func (l *ExpressionList) ColumnName() string             { return columnName(l, true) }
func (l *ExpressionList) ColumnNameWithoutAlias() string { return columnName(l, false) }

func (l *ExpressionList) appendColumnName(b *strings.Builder, useAlias bool) {
	for i, item := range l.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		item.appendColumnName(b, useAlias)
	}
}

func (l *ExpressionList) clone() Node {
	c := &ExpressionList{Items: make([]Node, len(l.Items))}
	for i, item := range l.Items {
		c.Items[i] = item.clone()
	}
	return c
}

// Literal is a constant value written in the query.
type Literal struct {
	WithAlias
	Value types.Field
}

func NewLiteral(v types.Field) *Literal { return &Literal{Value: v} }

func (*Literal) Kind() Kind       { return KindLiteral }
func (*Literal) Children() []Node { return nil }

func (l *Literal) ColumnName() string             { return columnName(l, true) }
func (l *Literal) ColumnNameWithoutAlias() string { return columnName(l, false) }

func (l *Literal) appendColumnName(b *strings.Builder, useAlias bool) {
	appendAliasAware(b, &l.WithAlias, useAlias, func() {
		b.WriteString(types.FieldToString(l.Value))
	})
}

func (l *Literal) clone() Node {
	c := *l
	return &c
}

// Identifier references a column by name.
type Identifier struct {
	WithAlias
	Name string
}

func NewIdentifier(name string) *Identifier { return &Identifier{Name: name} }

func (*Identifier) Kind() Kind       { return KindIdentifier }
func (*Identifier) Children() []Node { return nil }

func (i *Identifier) ColumnName() string             { return columnName(i, true) }
func (i *Identifier) ColumnNameWithoutAlias() string { return columnName(i, false) }

func (i *Identifier) appendColumnName(b *strings.Builder, useAlias bool) {
	appendAliasAware(b, &i.WithAlias, useAlias, func() {
		b.WriteString(i.Name)
	})
}

func (i *Identifier) clone() Node {
	c := *i
	return &c
}

// TableIdentifier names a table, as in "x IN db.t".
type TableIdentifier struct {
	WithAlias
	Database string
	Table    string
}

func (*TableIdentifier) Kind() Kind       { return KindTableIdentifier }
func (*TableIdentifier) Children() []Node { return nil }

func (t *TableIdentifier) ColumnName() string             { return columnName(t, true) }
func (t *TableIdentifier) ColumnNameWithoutAlias() string { return columnName(t, false) }

func (t *TableIdentifier) appendColumnName(b *strings.Builder, useAlias bool) {
	appendAliasAware(b, &t.WithAlias, useAlias, func() {
		if t.Database != "" {
			b.WriteString(t.Database)
			b.WriteByte('.')
		}
		b.WriteString(t.Table)
	})
}

func (t *TableIdentifier) clone() Node {
	c := *t
	return &c
}

// Subquery is a parenthesized SELECT. The query text is kept verbatim;
// this package does not parse SELECT statements.
type Subquery struct {
	WithAlias
	Query   string
	CTEName string
}

func (*Subquery) Kind() Kind       { return KindSubquery }
func (*Subquery) Children() []Node { return nil }

func (s *Subquery) ColumnName() string             { return columnName(s, true) }
func (s *Subquery) ColumnNameWithoutAlias() string { return columnName(s, false) }

// Subqueries are named after their CTE, or after their tree hash.
func (s *Subquery) appendColumnName(b *strings.Builder, useAlias bool) {
	appendAliasAware(b, &s.WithAlias, useAlias, func() {
		if s.CTEName != "" {
			b.WriteString(s.CTEName)
			return
		}
		h := TreeHashOf(s)
		fmt.Fprintf(b, "__subquery_%d_%d", h.Lo, h.Hi)
	})
}

func (s *Subquery) clone() Node {
	c := *s
	return &c
}

func columnName(n Node, useAlias bool) string {
	var b strings.Builder
	n.appendColumnName(&b, useAlias)
	return b.String()
}

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	return n.clone()
}

// Walk visits n and its descendants in depth-first pre-order.
// Returning false from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}
