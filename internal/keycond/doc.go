// Package keycond restates a WHERE predicate over the columns of a sorting
// key, as a list of elements in reverse Polish notation.
//
// It classifies only: deciding which key ranges to read is left to the
// caller. The predicate may come from either a syntax tree or an action
// graph; both are inspected through package rpn.
package keycond
