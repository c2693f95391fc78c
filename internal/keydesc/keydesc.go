package keydesc

import (
	"fmt"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/dag"
	"github.com/roach88/keyprune/internal/types"
)

// LegacyModuloName is the name modulo had in sorting keys written by older
// versions.
const LegacyModuloName = "moduleLegacy"

// Error reports a sorting key that cannot be used.
type Error struct {
	Definition string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sorting key %q: %v", e.Definition, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KeyDescription is a parsed sorting key.
//
// A key is a single expression or a tuple of expressions; each element is
// one key column. Column names are the canonical names of the element
// expressions. For a legacy key, every modulo call has been renamed to
// moduleLegacy before naming, matching how such keys were persisted.
type KeyDescription struct {
	Definition  string
	Expressions []ast.Node
	ColumnNames []string
	DataTypes   []types.DataType
	Legacy      bool
}

// Parse parses definition and types its elements against columns.
func Parse(definition string, columns map[string]types.DataType, legacy bool) (*KeyDescription, error) {
	root, err := ast.Parse(definition)
	if err != nil {
		return nil, &Error{Definition: definition, Err: err}
	}
	if legacy {
		ModuloToModuloLegacyRecursive(root)
	}

	kd := &KeyDescription{Definition: definition, Legacy: legacy}
	for _, expr := range keyElements(root) {
		_, n, err := dag.FromAST(expr, dag.BuildOptions{Inputs: columns})
		if err != nil {
			return nil, &Error{Definition: definition, Err: err}
		}
		if n.Column != nil {
			return nil, &Error{Definition: definition, Err: fmt.Errorf("key element %s is constant", expr.ColumnNameWithoutAlias())}
		}
		kd.Expressions = append(kd.Expressions, expr)
		kd.ColumnNames = append(kd.ColumnNames, expr.ColumnNameWithoutAlias())
		kd.DataTypes = append(kd.DataTypes, n.ResultType)
	}
	return kd, nil
}

// keyElements splits a key definition into its column expressions:
// tuple(a, b) and (a, b) have two elements, tuple() none, anything else one.
func keyElements(root ast.Node) []ast.Node {
	if fn, ok := root.(*ast.Function); ok && fn.Name == "tuple" {
		return fn.Args()
	}
	return []ast.Node{root}
}

// Position returns the index of the key column named name.
func (kd *KeyDescription) Position(name string) (int, bool) {
	for i, n := range kd.ColumnNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func (kd *KeyDescription) Len() int {
	return len(kd.ColumnNames)
}

// ModuloToModuloLegacyRecursive renames every modulo call in node to
// moduleLegacy, in place. Callers that must not modify a shared tree pass a
// clone.
func ModuloToModuloLegacyRecursive(node ast.Node) {
	ast.Walk(node, func(n ast.Node) bool {
		if fn, ok := n.(*ast.Function); ok && fn.Name == "modulo" {
			fn.Name = LegacyModuloName
		}
		return true
	})
}
