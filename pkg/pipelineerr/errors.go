// Package pipelineerr provides the structured error type shared by every
// pipeline stage.
//
// Error codes are machine-readable and map onto the four error kinds of
// §7: InputError, Infeasible, Timeout and InvariantViolated. The CLI driver
// maps codes to the exit codes of §6 (cmd/transitmap).
package pipelineerr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

// Error codes, grouped by the error kind of §7.
const (
	// InputError (§7): malformed exchange format, dangling reference,
	// geometry mismatch. Fatal; reported at stage boundary.
	CodeMalformedInput     Code = "INPUT_MALFORMED"
	CodeDanglingReference  Code = "INPUT_DANGLING_REF"
	CodeGeometryMismatch   Code = "INPUT_GEOMETRY_MISMATCH"
	CodeInvalidConfig      Code = "INPUT_INVALID_CONFIG"

	// Infeasible (§7): ILP infeasibility, grid routing failure even after
	// the configured recovery mode.
	CodeInfeasible Code = "INFEASIBLE"

	// Timeout (§7): exact solver or routing budget exhausted. For exact
	// solvers this is surfaced as Infeasible with this code as a
	// distinguishable subkind.
	CodeTimeout Code = "TIMEOUT"

	// InvariantViolated (§7): internal consistency check failed. Always
	// fatal.
	CodeInvariantViolated Code = "INVARIANT_VIOLATED"
)

// Error is a structured pipeline error with a code, an optional offending
// entity id (§7: "stage-level diagnostics always carry the offending
// Node/Edge id"), and an optional cause.
type Error struct {
	Code    Code
	Message string
	EntityID string // offending Node/Edge/OptEdge id, if applicable
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.EntityID != "" {
		msg = fmt.Sprintf("%s (entity=%s)", msg, e.EntityID)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithEntity attaches an offending entity id and returns e for chaining.
func (e *Error) WithEntity(id string) *Error {
	e.EntityID = id
	return e
}

// Is reports whether err has the given error code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, or "" if not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a human-readable message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ExitCode maps an error to the thin driver's exit code (§6):
// 1 input error, 2 infeasible, 3 timeout, 4 invariant violated.
// Returns 0 for a nil error and 4 for an unrecognized error kind (treated
// as an internal invariant violation, the most conservative outcome).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case CodeMalformedInput, CodeDanglingReference, CodeGeometryMismatch, CodeInvalidConfig:
		return 1
	case CodeInfeasible:
		return 2
	case CodeTimeout:
		return 3
	case CodeInvariantViolated:
		return 4
	default:
		return 4
	}
}
