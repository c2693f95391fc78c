// Package sets provides prepared membership sets and their registry.
//
// A prepared set materializes the right-hand side of an IN predicate so that
// index analysis can test key ranges against it. Sets are registered in a
// Registry under two views:
//
//   - Get(Key): exact lookup. Subquery sets are keyed by the subquery's tree
//     hash; literal sets also by the left-hand side types.
//   - ByTreeHash: every set prepared from a structurally identical
//     expression, regardless of types. Callers that do not know the
//     left-hand side types precisely scan these and check AreTypesEqual.
//
// A set is usable only after Finish; IsCreated reports that.
package sets
