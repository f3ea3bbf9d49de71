package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	events Repository
}

func NewService(events Repository) *Service {
	return &Service{events: events}
}

// Record persists one audit event, filling in id and timestamp when the
// caller left them zero.
func (s *Service) Record(ctx context.Context, e Event) error {
	if e.Action == "" {
		return fmt.Errorf("action is required")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return s.events.Create(ctx, &e)
}

func (s *Service) ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Event, int, error) {
	return s.events.ListByOrg(ctx, orgID, limit, offset)
}

func (s *Service) ListByEntity(ctx context.Context, orgID, entityID uuid.UUID, limit, offset int) ([]*Event, int, error) {
	return s.events.ListByEntity(ctx, orgID, entityID, limit, offset)
}
