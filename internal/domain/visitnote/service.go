package visitnote

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/domain/auditlog"
	"github.com/carebridge/carebridge/internal/domain/template"
	"github.com/carebridge/carebridge/internal/platform/auth"
)

// TemplateSource is the slice of the template store the submission path
// needs. template.Repository satisfies it.
type TemplateSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*template.Template, error)
}

// TxRunner runs fn inside one database transaction. db.PoolRunner is the
// production implementation; a submitted note and its audit event commit or
// roll back together through it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	notes     Repository
	templates TemplateSource
	audit     auditlog.Recorder
	tx        TxRunner
}

func NewService(notes Repository, templates TemplateSource, audit auditlog.Recorder, tx TxRunner) *Service {
	return &Service{notes: notes, templates: templates, audit: audit, tx: tx}
}

type SubmitInput struct {
	TemplateID uuid.UUID      `json:"template_id"`
	ClientID   uuid.UUID      `json:"client_id"`
	ShiftID    *uuid.UUID     `json:"shift_id,omitempty"`
	Data       map[string]any `json:"data"`
}

// Submit validates the submission against the current template and, if it
// passes, persists it with the template's structure frozen in as a snapshot.
// A failed validation persists nothing.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, in SubmitInput) (*VisitNote, error) {
	t, err := s.templates.GetByID(ctx, in.TemplateID)
	if err != nil {
		return nil, ErrNotFound
	}
	if t.OrgID != actor.OrgID {
		return nil, ErrNotFound
	}
	if !t.Submittable() {
		return nil, ErrTemplateNotEnabled
	}

	data := in.Data
	if data == nil {
		data = map[string]any{}
	}
	if errs := Validate(t.Sections, data); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	n := &VisitNote{
		OrgID:    actor.OrgID,
		ClientID: in.ClientID,
		CarerID:  actor.ID,
		ShiftID:  in.ShiftID,
		Snapshot: SchemaSnapshot{
			TemplateID:   t.ID,
			TemplateName: t.Name,
			Version:      t.Version,
			Sections:     template.CloneSections(t.Sections),
		},
		Data:     data,
		QAStatus: QAPending,
	}
	// The note and its audit event commit or roll back as one.
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.notes.Create(ctx, n); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditlog.Event{
			Action:     auditlog.ActionVisitNoteSubmitted,
			EntityType: "VisitNote",
			EntityID:   n.ID,
			ActorID:    actor.ID,
			OrgID:      actor.OrgID,
			Details: map[string]any{
				"template_id": t.ID.String(),
				"version":     t.Version,
				"client_id":   in.ClientID.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Review moves a pending note to APPROVED or REJECTED. Review is terminal:
// any review of a non-pending note fails with ErrAlreadyReviewed, including
// one repeating the recorded decision. Only the qa fields change; snapshot
// and data are never touched.
func (s *Service) Review(ctx context.Context, actor auth.Actor, id uuid.UUID, approve bool, comment *string) (*VisitNote, error) {
	if !actor.HasRole(auth.RoleQA) && !actor.HasRole(auth.RoleCoordinator) {
		return nil, ErrForbidden
	}
	n, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	status := QARejected
	action := auditlog.ActionQARejected
	if approve {
		status = QAApproved
		action = auditlog.ActionQAApproved
	}
	now := time.Now().UTC()
	// The status flip and its audit event commit or roll back as one.
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.notes.UpdateQA(ctx, n.ID, status, comment, actor.ID, now); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditlog.Event{
			Action:     action,
			EntityType: "VisitNote",
			EntityID:   n.ID,
			ActorID:    actor.ID,
			OrgID:      actor.OrgID,
			Details:    map[string]any{"prior_status": QAPending},
		})
	})
	if err != nil {
		return nil, err
	}

	n.QAStatus = status
	n.QAComment = comment
	n.ReviewedBy = &actor.ID
	n.ReviewedAt = &now
	return n, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*VisitNote, error) {
	return s.get(ctx, actor, id)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, f ListFilter, limit, offset int) ([]*VisitNote, int, error) {
	f.OrgID = actor.OrgID
	// Carers without a reviewing role only see their own notes.
	if !actor.HasRole(auth.RoleCoordinator) && !actor.HasRole(auth.RoleQA) {
		f.CarerID = &actor.ID
	}
	return s.notes.List(ctx, f, limit, offset)
}

// ListPendingQA is the reviewer work queue.
func (s *Service) ListPendingQA(ctx context.Context, actor auth.Actor, limit, offset int) ([]*VisitNote, int, error) {
	if !actor.HasRole(auth.RoleQA) && !actor.HasRole(auth.RoleCoordinator) {
		return nil, 0, ErrForbidden
	}
	return s.notes.List(ctx, ListFilter{OrgID: actor.OrgID, QAStatus: QAPending}, limit, offset)
}

func (s *Service) get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*VisitNote, error) {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.OrgID != actor.OrgID {
		// Existence of another organization's note is not confirmed.
		return nil, ErrNotFound
	}
	return n, nil
}
