// Package ast provides the parsed syntax tree of query expressions.
//
// The syntax tree is the unoptimized form of an expression, as written in a
// query. Every node carries a Kind tag fixed at construction (Function,
// Literal, Identifier, TableIdentifier, Subquery, ExpressionList) so that
// consumers branch on the tag instead of repeatedly inspecting types.
//
// # Column names
//
// ColumnName is the textual identity of an expression:
//
//	modulo(x, 10)
//	in(CounterID, (1, 2, 3))
//	arrayJoin(tags)
//
// Aliases never take part in ColumnNameWithoutAlias. ColumnName substitutes
// an alias only when PreferAliasToColumnName is set on that node.
//
// # Tree hash
//
// TreeHashOf is a SipHash-128 over the structure of a subtree (node ids,
// function names, literal values with their kinds, child counts). Aliases do
// not contribute. Prepared sets are registered under the tree hash of the
// expression that produced them.
//
// # Parsing
//
// Parse accepts a small SQL expression dialect, enough to write predicates
// and sorting keys. Operators become calls (a % b is modulo(a, b)); literal
// lists become tuple/array literals; "(SELECT ...)" becomes a Subquery
// holding the verbatim query text.
package ast
