package visitnote

import "errors"

var (
	ErrNotFound = errors.New("visit note not found")
	// ErrTemplateNotEnabled covers both disabled and non-ACTIVE templates:
	// a carer may only submit against a template currently offered in the
	// picker.
	ErrTemplateNotEnabled = errors.New("template is not enabled for submission")
	// ErrAlreadyReviewed is returned for any review of a note no longer
	// PENDING, even one repeating the recorded decision.
	ErrAlreadyReviewed = errors.New("visit note has already been reviewed")
	ErrForbidden       = errors.New("forbidden")
)

// ValidationError carries per-field messages keyed by field id. The
// submission was not persisted.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	return "visit note failed validation"
}
