// Package visitnote holds the submission side of the form engine: validation
// of submitted values, the schema snapshot frozen into each submission, and
// the QA review cycle.
package visitnote

import (
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/domain/template"
)

// QA review states. PENDING is the only non-terminal state.
const (
	QAPending  = "PENDING"
	QAApproved = "APPROVED"
	QARejected = "REJECTED"
)

// SchemaSnapshot is the template structure frozen at submission time. A
// visit note renders from its snapshot forever; later edits, revisions or
// archival of the template never reach it.
type SchemaSnapshot struct {
	TemplateID   uuid.UUID          `json:"template_id"`
	TemplateName string             `json:"template_name"`
	Version      int                `json:"version"`
	Sections     []template.Section `json:"sections"`
}

// VisitNote maps to the visit_note table. Snapshot and Data are write-once:
// nothing after Submit modifies them, QA included.
type VisitNote struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	OrgID      uuid.UUID      `db:"org_id" json:"org_id"`
	ClientID   uuid.UUID      `db:"client_id" json:"client_id"`
	CarerID    uuid.UUID      `db:"carer_id" json:"carer_id"`
	ShiftID    *uuid.UUID     `db:"shift_id" json:"shift_id,omitempty"`
	Snapshot   SchemaSnapshot `db:"snapshot" json:"snapshot"`
	Data       map[string]any `db:"data" json:"data"`
	QAStatus   string         `db:"qa_status" json:"qa_status"`
	QAComment  *string        `db:"qa_comment" json:"qa_comment,omitempty"`
	ReviewedBy *uuid.UUID     `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// Reviewed reports whether the note has reached a terminal QA state.
func (n *VisitNote) Reviewed() bool {
	return n.QAStatus != QAPending
}
