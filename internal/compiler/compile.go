package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/keyprune/internal/ir"
)

// CompileTable parses a CUE value into a TableSpec.
//
// The value is the table struct itself; its label is the table name:
//
//	table: hits: {
//		columns: {counter_id: "UInt32", url: "Nullable(String)"}
//		sorting_key: "(counter_id, event_date % 7)"
//		legacy_modulo: false
//	}
//
// Columns keep their declaration order.
func CompileTable(v cue.Value) (*ir.TableSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.TableSpec{}
	if labels := v.Path().Selectors(); len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{Field: "columns", Message: "columns are required", Pos: v.Pos()}
	}
	iter, err := colsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		typeName, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "columns." + iter.Selector().String(),
				Message: "column type must be a string such as \"UInt64\"",
				Pos:     iter.Value().Pos(),
			}
		}
		spec.Columns = append(spec.Columns, ir.ColumnSpec{Name: iter.Selector().Unquoted(), Type: typeName})
	}

	keyVal := v.LookupPath(cue.ParsePath("sorting_key"))
	if !keyVal.Exists() {
		return nil, &CompileError{Field: "sorting_key", Message: "sorting_key is required", Pos: v.Pos()}
	}
	if spec.SortingKey, err = keyVal.String(); err != nil {
		return nil, formatCUEError(err)
	}

	if legacyVal := v.LookupPath(cue.ParsePath("legacy_modulo")); legacyVal.Exists() {
		if spec.LegacyModulo, err = legacyVal.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	return spec, nil
}

// CompileSource compiles every table under the top-level "table" field of
// a CUE document, in declaration order.
func CompileSource(filename string, src []byte) ([]ir.TableSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{Field: "table", Message: "no tables defined", Pos: v.Pos()}
	}
	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.TableSpec
	for iter.Next() {
		spec, err := CompileTable(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", iter.Selector().Unquoted(), err)
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// CompileError is a compilation failure with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError keeps the first CUE error, with its position when known.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
