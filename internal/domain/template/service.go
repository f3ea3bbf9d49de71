package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/carebridge/internal/domain/auditlog"
	"github.com/carebridge/carebridge/internal/domain/fieldtype"
	"github.com/carebridge/carebridge/internal/platform/auth"
)

type Service struct {
	templates Repository
	audit     auditlog.Recorder
	log       zerolog.Logger
}

func NewService(templates Repository, audit auditlog.Recorder, log zerolog.Logger) *Service {
	return &Service{templates: templates, audit: audit, log: log}
}

type CreateInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
}

type UpdateInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
}

// CreateDraft creates a new template in DRAFT status at version 1. Drafts may
// hold any structure; invariants are only enforced at publication.
func (s *Service) CreateDraft(ctx context.Context, actor auth.Actor, in CreateInput) (*Template, error) {
	if in.Name == "" {
		return nil, &InvalidInputError{Msg: "name is required"}
	}
	t := &Template{
		OrgID:       actor.OrgID,
		Name:        in.Name,
		Description: in.Description,
		Version:     1,
		Status:      StatusDraft,
		IsEnabled:   true,
		Sections:    in.Sections,
	}
	if t.Sections == nil {
		t.Sections = []Section{}
	}
	SortSections(t.Sections)
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Template, error) {
	return s.get(ctx, actor, id)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, status string, limit, offset int) ([]*Template, int, error) {
	return s.templates.List(ctx, actor.OrgID, status, limit, offset)
}

// ListEnabled returns the templates a carer may start a visit note against:
// ACTIVE and enabled, ordered by name.
func (s *Service) ListEnabled(ctx context.Context, actor auth.Actor) ([]*Template, error) {
	return s.templates.ListEnabled(ctx, actor.OrgID)
}

// Update edits a template. Drafts take any change. Active templates only
// take cosmetic changes: labels, descriptions and field config may move, but
// the section/field structure and every field's type are fixed because
// existing submissions depend on them.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*Template, error) {
	t, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	prevVersion, prevStatus := t.Version, t.Status

	switch t.Status {
	case StatusDraft:
		if in.Sections != nil {
			SortSections(in.Sections)
			t.Sections = in.Sections
		}
	case StatusActive:
		if in.Sections != nil {
			SortSections(in.Sections)
			amended, err := amendActive(t.Sections, in.Sections)
			if err != nil {
				return nil, err
			}
			t.Sections = amended
		}
	default:
		return nil, &EditConflictError{Reason: "template is archived"}
	}

	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Description != nil {
		t.Description = in.Description
	}

	if err := s.templates.Update(ctx, t, prevVersion, prevStatus); err != nil {
		return nil, err
	}
	return t, nil
}

// amendActive accepts a proposed section tree against the frozen one. The
// proposal must carry exactly the same sections and fields in the same order
// with the same types; only labels, descriptions and config may differ.
func amendActive(current, proposed []Section) ([]Section, error) {
	structural := &EditConflictError{
		Reason: "sections and fields of an active template are fixed; revise the template to change its structure",
	}
	if len(proposed) != len(current) {
		return nil, structural
	}
	for i, cur := range current {
		prop := proposed[i]
		if prop.ID != cur.ID || prop.Order != cur.Order {
			return nil, structural
		}
		if len(prop.Fields) != len(cur.Fields) {
			return nil, structural
		}
		for j, cf := range cur.Fields {
			pf := prop.Fields[j]
			if pf.ID != cf.ID || pf.Order != cf.Order || pf.Required != cf.Required {
				return nil, structural
			}
			if pf.Type != cf.Type {
				return nil, &EditConflictError{
					Reason: fmt.Sprintf("field %q: type is locked once a template is active", cf.ID),
				}
			}
		}
	}
	return proposed, nil
}

// Revise reopens an active template for structural editing. The template
// drops back to DRAFT with an incremented version and stops being selectable
// for new visit notes until it is published again.
func (s *Service) Revise(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Template, error) {
	t, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusActive {
		return nil, &EditConflictError{Reason: "only an active template can be revised"}
	}
	prevVersion := t.Version
	t.Status = StatusDraft
	t.Version++
	if err := s.templates.Update(ctx, t, prevVersion, StatusActive); err != nil {
		return nil, err
	}
	return t, nil
}

// Publish transitions a draft to ACTIVE after checking the structural
// invariants. The version is fixed from this point on.
func (s *Service) Publish(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Template, error) {
	t, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusDraft {
		return nil, &EditConflictError{Reason: "only a draft can be published"}
	}
	if reasons := structuralViolations(t); len(reasons) > 0 {
		return nil, &PublishRejectedError{Reasons: reasons}
	}

	prevVersion := t.Version
	t.Status = StatusActive
	if err := s.templates.Update(ctx, t, prevVersion, StatusDraft); err != nil {
		return nil, err
	}

	s.record(ctx, auditlog.Event{
		Action:     auditlog.ActionTemplatePublished,
		EntityType: "Template",
		EntityID:   t.ID,
		ActorID:    actor.ID,
		OrgID:      actor.OrgID,
		Details:    map[string]any{"name": t.Name, "version": t.Version},
	})
	return t, nil
}

// Archive retires a template. Archived templates are no longer selectable
// for new visit notes but stay renderable for historical ones. Archiving a
// draft discards it.
func (s *Service) Archive(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Template, error) {
	t, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusArchived {
		return nil, &EditConflictError{Reason: "template is already archived"}
	}
	prevVersion, prevStatus := t.Version, t.Status
	t.Status = StatusArchived
	t.IsEnabled = false
	if err := s.templates.Update(ctx, t, prevVersion, prevStatus); err != nil {
		return nil, err
	}

	s.record(ctx, auditlog.Event{
		Action:     auditlog.ActionTemplateArchived,
		EntityType: "Template",
		EntityID:   t.ID,
		ActorID:    actor.ID,
		OrgID:      actor.OrgID,
		Details:    map[string]any{"name": t.Name, "version": t.Version, "prior_status": prevStatus},
	})
	return t, nil
}

// SetEnabled toggles whether an active template appears in the carer picker.
func (s *Service) SetEnabled(ctx context.Context, actor auth.Actor, id uuid.UUID, enabled bool) (*Template, error) {
	t, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusActive {
		return nil, &EditConflictError{Reason: "only an active template can be enabled or disabled"}
	}
	t.IsEnabled = enabled
	if err := s.templates.Update(ctx, t, t.Version, t.Status); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if t.OrgID != actor.OrgID {
		// Existence of another organization's template is not confirmed.
		return nil, ErrNotFound
	}
	return t, nil
}

func structuralViolations(t *Template) []string {
	var reasons []string
	if len(t.Sections) == 0 {
		reasons = append(reasons, "template has no sections")
	}
	seen := map[string]bool{}
	for _, sec := range t.Sections {
		if len(sec.Fields) == 0 {
			reasons = append(reasons, fmt.Sprintf("section %q has no fields", sec.ID))
		}
		for _, f := range sec.Fields {
			if f.ID == "" {
				reasons = append(reasons, fmt.Sprintf("section %q has a field without an id", sec.ID))
				continue
			}
			if seen[f.ID] {
				reasons = append(reasons, fmt.Sprintf("duplicate field id %q", f.ID))
			}
			seen[f.ID] = true
			if !fieldtype.Known(f.Type) {
				reasons = append(reasons, fmt.Sprintf("field %q has unknown type %q", f.ID, f.Type))
			}
			switch f.Type {
			case fieldtype.SingleChoice, fieldtype.MultipleChoice:
				if len(f.Config.Options) == 0 {
					reasons = append(reasons, fmt.Sprintf("choice field %q has no options", f.ID))
				}
			}
		}
	}
	return reasons
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
