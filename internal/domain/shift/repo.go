package shift

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Shift) error
	GetByID(ctx context.Context, id uuid.UUID) (*Shift, error)
	// Update writes the shift conditioned on the stored row still holding
	// prevStatus, and returns a StateError when it does not. Check-in and
	// check-out race against each other and against schedule changes.
	Update(ctx context.Context, s *Shift, prevStatus string) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Shift, int, error)
}

// ListFilter narrows a listing. OrgID is always set; the rest are optional.
// Day selects shifts whose scheduled start falls on that calendar day UTC.
type ListFilter struct {
	OrgID    uuid.UUID
	CarerID  *uuid.UUID
	ClientID *uuid.UUID
	Status   string
	Day      *time.Time
}
