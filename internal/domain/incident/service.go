package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/carebridge/internal/domain/auditlog"
	"github.com/carebridge/carebridge/internal/platform/auth"
)

type Service struct {
	incidents Repository
	audit     auditlog.Recorder
	log       zerolog.Logger
}

func NewService(incidents Repository, audit auditlog.Recorder, log zerolog.Logger) *Service {
	return &Service{incidents: incidents, audit: audit, log: log}
}

type ReportInput struct {
	ClientID    uuid.UUID  `json:"client_id"`
	ShiftID     *uuid.UUID `json:"shift_id,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
	Category    string     `json:"category"`
	Severity    string     `json:"severity"`
	Description string     `json:"description"`
	ActionTaken *string    `json:"action_taken,omitempty"`
}

func (s *Service) Report(ctx context.Context, actor auth.Actor, in ReportInput) (*Incident, error) {
	if in.ClientID == uuid.Nil {
		return nil, &InvalidInputError{Msg: "client_id is required"}
	}
	if in.Description == "" {
		return nil, &InvalidInputError{Msg: "description is required"}
	}
	if !validCategory(in.Category) {
		return nil, &InvalidInputError{Msg: fmt.Sprintf("unknown category %q", in.Category)}
	}
	if !validSeverity(in.Severity) {
		return nil, &InvalidInputError{Msg: fmt.Sprintf("unknown severity %q", in.Severity)}
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}

	i := &Incident{
		OrgID:       actor.OrgID,
		ClientID:    in.ClientID,
		ReportedBy:  actor.ID,
		ShiftID:     in.ShiftID,
		OccurredAt:  in.OccurredAt.UTC(),
		Category:    in.Category,
		Severity:    in.Severity,
		Description: in.Description,
		ActionTaken: in.ActionTaken,
		Status:      StatusOpen,
	}
	if err := s.incidents.Create(ctx, i); err != nil {
		return nil, err
	}

	s.record(ctx, auditlog.Event{
		Action:     auditlog.ActionIncidentReported,
		EntityType: "Incident",
		EntityID:   i.ID,
		ActorID:    actor.ID,
		OrgID:      actor.OrgID,
		Details: map[string]any{
			"category":  i.Category,
			"severity":  i.Severity,
			"client_id": i.ClientID.String(),
		},
	})
	return i, nil
}

// UpdateStatus moves the incident one step along the workflow. actionTaken,
// when given, replaces the recorded action.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status string, actionTaken *string) (*Incident, error) {
	i, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !validTransition(i.Status, status) {
		return nil, &TransitionError{From: i.Status, To: status}
	}
	prev := i.Status
	if err := s.incidents.UpdateStatus(ctx, id, status, prev, actionTaken); err != nil {
		return nil, err
	}
	i.Status = status
	if actionTaken != nil {
		i.ActionTaken = actionTaken
	}

	s.record(ctx, auditlog.Event{
		Action:     auditlog.ActionIncidentStatusMoved,
		EntityType: "Incident",
		EntityID:   i.ID,
		ActorID:    actor.ID,
		OrgID:      actor.OrgID,
		Details:    map[string]any{"from": prev, "to": status},
	})
	return i, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Incident, error) {
	return s.get(ctx, actor, id)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, f ListFilter, limit, offset int) ([]*Incident, int, error) {
	f.OrgID = actor.OrgID
	return s.incidents.List(ctx, f, limit, offset)
}

func (s *Service) get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Incident, error) {
	i, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if i.OrgID != actor.OrgID {
		return nil, ErrNotFound
	}
	return i, nil
}

func (s *Service) record(ctx context.Context, e auditlog.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("action", e.Action).Str("entity_id", e.EntityID.String()).
			Msg("audit record failed")
	}
}
