package risk

import "fmt"

// ValidationError marks a failure caused by the caller's input: an empty
// batch, a missing training target. The message is safe to surface verbatim.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ComputationError marks an internal numeric failure not attributable to the
// caller. The transport layer logs the detail and surfaces a generic message.
type ComputationError struct {
	msg string
	err error
}

func (e *ComputationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *ComputationError) Unwrap() error { return e.err }

func computationError(msg string, err error) error {
	return &ComputationError{msg: msg, err: err}
}
