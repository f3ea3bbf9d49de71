package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned for unknown ids and for templates outside the
// caller's organization; the two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("template not found")

// ErrStaleVersion is returned when an optimistic write lost the race: the
// stored version or status no longer matches what the caller read.
var ErrStaleVersion = errors.New("template was modified concurrently")

// InvalidInputError rejects a request the caller can correct and resubmit.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

// EditConflictError rejects a structural mutation of a template that is not
// in DRAFT status.
type EditConflictError struct {
	Reason string
}

func (e *EditConflictError) Error() string {
	return fmt.Sprintf("edit conflict: %s", e.Reason)
}

// PublishRejectedError rejects publication of a draft whose structure
// violates an invariant. It carries every violation, not just the first.
type PublishRejectedError struct {
	Reasons []string
}

func (e *PublishRejectedError) Error() string {
	return fmt.Sprintf("publish rejected: %s", strings.Join(e.Reasons, "; "))
}
