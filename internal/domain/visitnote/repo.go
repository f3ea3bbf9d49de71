package visitnote

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *VisitNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*VisitNote, error)
	// UpdateQA sets the review fields conditioned on the stored row still
	// being PENDING, and returns ErrAlreadyReviewed when it is not. This
	// single conditional write is what makes a terminal QA state terminal
	// under concurrent reviewers.
	UpdateQA(ctx context.Context, id uuid.UUID, status string, comment *string, reviewedBy uuid.UUID, reviewedAt time.Time) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*VisitNote, int, error)
}

// ListFilter narrows a listing. OrgID is always set; the rest are optional.
type ListFilter struct {
	OrgID    uuid.UUID
	ClientID *uuid.UUID
	CarerID  *uuid.UUID
	ShiftID  *uuid.UUID
	QAStatus string
}
