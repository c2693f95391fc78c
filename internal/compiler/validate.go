package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/keyprune/internal/ir"
	"github.com/roach88/keyprune/internal/types"
)

// Validation error codes (E200-E299)
const (
	ErrTableNameEmpty    = "E201" // table name is required
	ErrNoColumns         = "E202" // at least one column required
	ErrInvalidColumnType = "E203" // column type does not parse
	ErrDuplicateColumn   = "E204" // duplicate column name
	ErrSortingKeyEmpty   = "E205" // sorting key is required
	ErrInvalidSortingKey = "E206" // sorting key does not parse or type
)

// ValidationError is one rule violation in a table spec.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled table spec. It returns every error found
// instead of stopping at the first one.
func Validate(spec *ir.TableSpec) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "table name is required", Code: ErrTableNameEmpty})
	}
	if len(spec.Columns) == 0 {
		errs = append(errs, ValidationError{Field: "columns", Message: "at least one column is required", Code: ErrNoColumns})
	}

	columnsOK := true
	seen := make(map[string]bool, len(spec.Columns))
	for _, c := range spec.Columns {
		field := "columns." + c.Name
		if seen[c.Name] {
			columnsOK = false
			errs = append(errs, ValidationError{Field: field, Message: "duplicate column", Code: ErrDuplicateColumn})
		}
		seen[c.Name] = true
		if _, err := types.Parse(c.Type); err != nil {
			columnsOK = false
			errs = append(errs, ValidationError{Field: field, Message: err.Error(), Code: ErrInvalidColumnType})
		}
	}

	if strings.TrimSpace(spec.SortingKey) == "" {
		errs = append(errs, ValidationError{Field: "sorting_key", Message: "sorting key is required", Code: ErrSortingKeyEmpty})
		return errs
	}
	if !columnsOK {
		return errs
	}

	if _, err := spec.Key(); err != nil {
		errs = append(errs, ValidationError{Field: "sorting_key", Message: err.Error(), Code: ErrInvalidSortingKey})
	}
	return errs
}
