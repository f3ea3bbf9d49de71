package template

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	// Update writes the template conditioned on the stored row still holding
	// prevVersion and prevStatus, and returns ErrStaleVersion when it does
	// not. This is the optimistic check that serializes publication against
	// concurrent edits.
	Update(ctx context.Context, t *Template, prevVersion int, prevStatus string) error
	List(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Template, int, error)
	ListEnabled(ctx context.Context, orgID uuid.UUID) ([]*Template, error)
}
