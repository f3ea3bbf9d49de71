package incident

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, i *Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)
	// UpdateStatus moves the incident conditioned on the stored row still
	// holding prevStatus, and returns a TransitionError when it does not.
	UpdateStatus(ctx context.Context, id uuid.UUID, status, prevStatus string, actionTaken *string) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Incident, int, error)
}

type ListFilter struct {
	OrgID    uuid.UUID
	ClientID *uuid.UUID
	Status   string
	Severity string
}
