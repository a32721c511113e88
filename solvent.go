package solvent

import (
	"errors"
	"fmt"
)

// Standard widths.
const (
	Width8  = 8
	Width16 = 16
	Width32 = 32
	Width64 = 64
)

var (
	// ErrSolverInterrupted is returned when a native check is cancelled by a
	// user interrupt or an interrupt broadcast. The session remains usable.
	ErrSolverInterrupted = errors.New("solver interrupted")

	// ErrSolverResourceLimit is returned when a check hits a timeout or a
	// memory cap. Callers may retry with looser limits.
	ErrSolverResourceLimit = errors.New("solver resource limit")

	// ErrSolverUnknown is returned when the solver gives up for a reason that
	// is neither an interrupt nor a resource limit.
	ErrSolverUnknown = errors.New("solver unknown error")

	// ErrMalformedLiteral is returned when a literal node carries no
	// concrete value (e.g. a bitvector literal with a nil value).
	ErrMalformedLiteral = errors.New("malformed literal")

	// ErrUnsupportedConstruct is returned for constructs the backend cannot
	// lower or abstract, such as uninterpreted functions or array sorts.
	ErrUnsupportedConstruct = errors.New("unsupported construct")
)

// UnknownOperatorError is returned when an operation tag has no table entry
// or a native operator code has no mapped tag. It indicates a version
// mismatch with the native solver library and is never recoverable.
type UnknownOperatorError struct {
	Op   Op     // IR operation tag, if known
	Decl string // native declaration kind or name, if known
}

// Error returns the string representation of the error.
func (e *UnknownOperatorError) Error() string {
	if e.Decl != "" {
		return fmt.Sprintf("unknown operator: native decl %s", e.Decl)
	}
	return fmt.Sprintf("unknown operator: %s", e.Op)
}

// BackendError represents a structural translation failure. It wraps the
// underlying cause, if any, but never a raw native error value.
type BackendError struct {
	Msg string
	Err error
}

// Error returns the string representation of the error.
func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend: %s: %s", e.Msg, e.Err)
	}
	return "backend: " + e.Msg
}

// Unwrap returns the wrapped error.
func (e *BackendError) Unwrap() error { return e.Err }

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
