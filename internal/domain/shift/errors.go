package shift

import "errors"

var (
	ErrNotFound = errors.New("shift not found")
)

// InvalidInputError rejects a request the caller can correct and resubmit.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

// StateError reports a check-in/out attempted in the wrong shift state.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return e.Reason }
