// Package harness runs node introspection scenarios.
//
// A scenario is a YAML file naming typed columns (inline or from a CUE
// schema), constants, prepared subquery sets, and analysis settings, then
// listing expressions and WHERE predicates with their expected
// properties. Every expression is observed in both representations, the
// syntax tree and the action graph, so a single scenario also checks that
// the two agree.
//
// Scenario files live under testdata/scenarios; golden snapshots of their
// results under testdata/golden.
package harness
