// Package functions is the catalog of functions an expression may call.
//
// Each Base knows its result type for given argument types and, when it is
// deterministic and independent of runtime state, how to fold constant
// arguments. The action graph uses both when compiling expressions; nothing
// here evaluates columns.
//
// Default null handling: a nullable argument makes the result nullable and
// a NULL argument folds to NULL. Functions that need to see NULLs (the
// three-valued logical functions, tuple, array, membership) set KeepNulls.
package functions
