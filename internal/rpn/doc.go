// Package rpn inspects predicate expressions for index analysis.
//
// A Node is a handle on an expression that comes either from a parsed
// syntax tree (package ast) or from a compiled action graph (package dag).
// Index analysis asks the same questions of both:
//
//   - ColumnName, ColumnNameWithModuloLegacy: canonical, alias-free text
//     used to match predicate subexpressions against key columns. Both
//     representations produce identical text for identical expressions.
//   - IsFunction, IsConstant, ConstantColumn, TryGetConstant: classification
//     and constant extraction.
//   - TryGetPreparedSet, TryGetPreparedSetForTypes, TryGetPreparedSetForKey:
//     the prepared set behind the right-hand side of IN, by increasingly
//     specific lookups.
//   - ToFunctionNode, ToFunctionNodeOrNull: a view exposing the function
//     name and arguments for recursive descent.
//
// All nodes of an analysis pass share one TreeContext holding the query
// context, the constants block and the prepared-set registry. The context
// is fully populated before the pass and read-only during it, so every
// operation is a pure read.
//
// Absence is never an error: missing constants and sets are reported as
// false or nil. Only contract violations, such as asking a non-constant for
// its constant column, return a LogicalError.
//
// BuildRPN turns a predicate into reverse Polish notation over caller
// defined elements; package keycond builds on it.
package rpn
