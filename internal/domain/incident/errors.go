package incident

import "errors"

var (
	ErrNotFound = errors.New("incident not found")
)

// InvalidInputError rejects a report the caller can correct and resubmit.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

// TransitionError reports a status move the workflow does not allow.
type TransitionError struct {
	From, To string
}

func (e *TransitionError) Error() string {
	return "cannot move incident from " + e.From + " to " + e.To
}
