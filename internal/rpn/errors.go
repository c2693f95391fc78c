package rpn

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors raised by the adapter.
type ErrorCode string

// ErrCodeLogicalError marks a contract violation by the caller, such as
// asking a non-constant node for its constant column.
const ErrCodeLogicalError ErrorCode = "LOGICAL_ERROR"

// LogicalError reports a caller bug. Classification (IsFunction,
// IsConstant) should have ruled the call out; the current analysis cannot
// continue.
type LogicalError struct {
	Code    ErrorCode
	Message string

	// Node is the canonical name of the offending node, if known.
	Node string
}

func (e *LogicalError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLogicalError reports whether err is or wraps a LogicalError.
func IsLogicalError(err error) bool {
	var le *LogicalError
	if errors.As(err, &le) {
		return le.Code == ErrCodeLogicalError
	}
	return false
}

func logicalError(n Node, message string) *LogicalError {
	return &LogicalError{Code: ErrCodeLogicalError, Message: message, Node: n.ColumnName()}
}
