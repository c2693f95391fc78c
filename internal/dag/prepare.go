package dag

import (
	"fmt"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/sets"
)

// PrepareSets builds and registers a set for every IN right-hand side of
// predicate that folds to a constant list. Left-hand side types are
// inferred from opts.Inputs; the set is registered in opts.Sets under the
// literal key for those types.
//
// Subqueries and tables are skipped: their sets come from elsewhere. A
// right-hand side that already has a set for the inferred types is left
// alone. PrepareSets returns the number of sets it added.
func PrepareSets(predicate ast.Node, opts BuildOptions, setOpts ...sets.Option) (int, error) {
	if opts.Sets == nil {
		return 0, fmt.Errorf("prepare sets: no registry")
	}

	var (
		added   int
		walkErr error
	)
	ast.Walk(predicate, func(n ast.Node) bool {
		if walkErr != nil {
			return false
		}
		fn, ok := n.(*ast.Function)
		if !ok || (fn.Name != "in" && fn.Name != "notIn") || len(fn.Args()) != 2 {
			return true
		}
		lhs, rhs := fn.Args()[0], fn.Args()[1]
		switch rhs.(type) {
		case *ast.Subquery, *ast.TableIdentifier:
			return true
		}

		ok, err := prepareOne(lhs, rhs, opts, setOpts)
		if err != nil {
			walkErr = fmt.Errorf("prepare set for %s: %w", fn.ColumnNameWithoutAlias(), err)
			return false
		}
		if ok {
			added++
		}
		return true
	})
	return added, walkErr
}

func prepareOne(lhs, rhs ast.Node, opts BuildOptions, setOpts []sets.Option) (bool, error) {
	scratch := New(opts.Functions)
	compileOpts := opts
	compileOpts.Sets = nil

	left, err := scratch.AddAST(lhs, compileOpts)
	if err != nil {
		return false, err
	}
	elementTypes := ElementTypes(left.ResultType)

	key := sets.KeyForLiteral(rhs, elementTypes)
	if opts.Sets.Get(key) != nil {
		return false, nil
	}

	right, err := scratch.AddAST(rhs, compileOpts)
	if err != nil {
		return false, err
	}
	value, ok := column.ConstValue(right.Column)
	if !ok {
		// Not a constant list; nothing to prepare.
		return false, nil
	}
	s, err := sets.FromLiteral(value, elementTypes, setOpts...)
	if err != nil {
		return false, err
	}
	opts.Sets.Add(key, s)
	return true, nil
}
