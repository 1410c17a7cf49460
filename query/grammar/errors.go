package grammar

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural problems detected before any SQL is emitted.
var (
	// ErrNoTable is returned when a query is compiled without a table.
	ErrNoTable = errors.New("no table set")
)

// StructuralError reports a query that is malformed independent of dialect:
// a missing table, pagination set twice, joins on a mutation. It is always
// surfaced to the caller; it indicates a caller logic error.
type StructuralError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return "structural: " + e.Reason
}

// Unwrap returns the underlying sentinel, if any.
func (e *StructuralError) Unwrap() error {
	return e.Cause
}

// BindingError reports a raw fragment whose placeholder count does not match
// the number of supplied bindings.
type BindingError struct {
	Fragment string
	Want     int
	Got      int
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	return fmt.Sprintf("raw fragment %q has %d placeholders but %d bindings", e.Fragment, e.Want, e.Got)
}

// OperatorError reports a comparison operator outside the allowed set.
type OperatorError struct {
	Operator string
}

// Error implements the error interface.
func (e *OperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %q", e.Operator)
}

// DialectError reports a dialect with no registered grammar.
type DialectError struct {
	Dialect string
}

// Error implements the error interface.
func (e *DialectError) Error() string {
	return fmt.Sprintf("no grammar registered for dialect %q", e.Dialect)
}

// IsStructural reports whether err is a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// IsBindingMismatch reports whether err is a BindingError.
func IsBindingMismatch(err error) bool {
	var be *BindingError
	return errors.As(err, &be)
}
