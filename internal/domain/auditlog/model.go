package auditlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the suite.
const (
	ActionTemplatePublished   = "TEMPLATE_PUBLISHED"
	ActionTemplateArchived    = "TEMPLATE_ARCHIVED"
	ActionVisitNoteSubmitted  = "VISIT_NOTE_SUBMITTED"
	ActionQAApproved          = "SUBMISSION_QA_APPROVED"
	ActionQARejected          = "SUBMISSION_QA_REJECTED"
	ActionIncidentReported    = "INCIDENT_REPORTED"
	ActionIncidentStatusMoved = "INCIDENT_STATUS_CHANGED"
)

// Event is one immutable audit record. Events are only ever inserted.
type Event struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	Action     string         `db:"action" json:"action"`
	EntityType string         `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID      `db:"entity_id" json:"entity_id"`
	ActorID    uuid.UUID      `db:"actor_id" json:"actor_id"`
	OrgID      uuid.UUID      `db:"org_id" json:"org_id"`
	Timestamp  time.Time      `db:"recorded_at" json:"timestamp"`
	Details    map[string]any `db:"details" json:"details,omitempty"`
}

// Recorder is the narrow interface the rest of the suite writes audit events
// through. A Record failure must never fail the operation being audited;
// callers log it at warn level and move on.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}
