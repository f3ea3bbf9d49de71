package template

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/domain/fieldtype"
)

// Template lifecycle statuses.
const (
	StatusDraft    = "DRAFT"
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
)

// Field is one question on a visit-note form. ID is stable across template
// versions: it identifies "the same question" in every submission ever made
// against any version of the template.
type Field struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Description *string          `json:"description,omitempty"`
	Type        fieldtype.Kind   `json:"type"`
	Required    bool             `json:"required"`
	Order       int              `json:"order"`
	Config      fieldtype.Config `json:"config"`
}

// Clone returns a structural copy sharing no memory with the receiver.
func (f Field) Clone() Field {
	out := f
	if f.Description != nil {
		d := *f.Description
		out.Description = &d
	}
	out.Config = f.Config.Clone()
	return out
}

type Section struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Order       int     `json:"order"`
	Fields      []Field `json:"fields"`
}

// Clone returns a structural copy sharing no memory with the receiver.
func (s Section) Clone() Section {
	out := s
	if s.Description != nil {
		d := *s.Description
		out.Description = &d
	}
	out.Fields = make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		out.Fields[i] = f.Clone()
	}
	return out
}

// CloneSections deep-copies a section tree. The snapshot binder relies on
// this to freeze a template's structure into a submission.
func CloneSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// SortSections orders sections and their fields by the declared order,
// keeping declaration order for ties.
func SortSections(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
	for i := range sections {
		fields := sections[i].Fields
		sort.SliceStable(fields, func(a, b int) bool {
			return fields[a].Order < fields[b].Order
		})
	}
}

// Template maps to the template table. Sections are stored as one JSONB
// document: the tree is always read and written whole.
type Template struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OrgID       uuid.UUID `db:"org_id" json:"org_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Version     int       `db:"version" json:"version"`
	Status      string    `db:"status" json:"status"`
	IsEnabled   bool      `db:"is_enabled" json:"is_enabled"`
	Sections    []Section `db:"sections" json:"sections"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Submittable reports whether new visit notes may be created against the
// template.
func (t *Template) Submittable() bool {
	return t.Status == StatusActive && t.IsEnabled
}

// FieldByID walks the section tree for a field. Field ids are unique across
// the whole template, not just within a section.
func (t *Template) FieldByID(id string) (Field, bool) {
	for _, s := range t.Sections {
		for _, f := range s.Fields {
			if f.ID == id {
				return f, true
			}
		}
	}
	return Field{}, false
}
