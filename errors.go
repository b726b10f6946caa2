package syncscope

import (
	"errors"
	"fmt"
)

var (
	// ErrContractViolation is matched (via [errors.Is]) by every
	// [*ContractViolation].
	ErrContractViolation = errors.New(`syncscope: contract violation`)

	// ErrInvalidScope indicates a scope outside the defined set.
	ErrInvalidScope = errors.New(`syncscope: invalid scope`)

	// ErrInvalidCount indicates a construction-time count (initial value,
	// maximum, participants) outside the legal range.
	ErrInvalidCount = errors.New(`syncscope: invalid count`)

	// ErrInvalidOption indicates an option that could not be applied.
	ErrInvalidOption = errors.New(`syncscope: invalid option`)

	// ErrUnsupported indicates a platform capability that is unavailable on
	// the current operating system.
	ErrUnsupported = errors.New(`syncscope: unsupported`)
)

// ContractViolation is the panic value used for caller misuse that must not
// be corrected silently, e.g. over-releasing a semaphore, or counting a latch
// down past zero.
//
// It implements the error interface, so recovered values may be matched with
// [errors.Is] against [ErrContractViolation], or against Cause.
type ContractViolation struct {
	// Cause is an optional underlying error.
	Cause error
	// Op is the operation that detected the violation, e.g. "semaphore.release".
	Op string
	// Message describes the violated precondition.
	Message string
}

// Error implements the error interface.
func (e *ContractViolation) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "contract violation"
	}
	if e.Op == "" {
		return "syncscope: " + msg
	}
	return "syncscope: " + e.Op + ": " + msg
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *ContractViolation) Unwrap() error {
	return e.Cause
}

// Is reports true for [ErrContractViolation], regardless of contents.
func (e *ContractViolation) Is(target error) bool {
	return target == ErrContractViolation
}

// Violate panics with a [*ContractViolation] for op, formatting the message
// as with [fmt.Sprintf].
func Violate(op string, format string, args ...any) {
	panic(&ContractViolation{
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	})
}

// AsContractViolation extracts a [*ContractViolation] from a recovered panic
// value, returning nil if the value is something else.
func AsContractViolation(recovered any) *ContractViolation {
	err, ok := recovered.(error)
	if !ok {
		return nil
	}
	var cv *ContractViolation
	if errors.As(err, &cv) {
		return cv
	}
	return nil
}
