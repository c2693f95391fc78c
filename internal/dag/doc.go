// Package dag implements the action graph an expression is compiled into.
//
// An ActionsDAG holds INPUT, COLUMN, ALIAS, ARRAY_JOIN and FUNCTION nodes.
// Nodes are hash-consed, and calls whose arguments are all scalar constants
// are folded: the FUNCTION node keeps its name and children but carries the
// result as a constant column.
//
// FromAST compiles a syntax tree given the input column types. The
// right-hand side of IN becomes a constant Set column when a matching set is
// registered; PrepareSets registers sets for constant lists beforehand.
package dag
