package auditlog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Event) error
	ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Event, int, error)
	ListByEntity(ctx context.Context, orgID, entityID uuid.UUID, limit, offset int) ([]*Event, int, error)
}
