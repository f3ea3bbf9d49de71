// Package incident covers incident reporting: falls, medication errors and
// the like, raised by carers and worked by coordinators.
package incident

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOpen        = "OPEN"
	StatusUnderReview = "UNDER_REVIEW"
	StatusResolved    = "RESOLVED"
)

const (
	CategoryFall       = "FALL"
	CategoryMedication = "MEDICATION"
	CategoryInjury     = "INJURY"
	CategoryBehaviour  = "BEHAVIOUR"
	CategoryProperty   = "PROPERTY"
	CategoryOther      = "OTHER"
)

const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

type Incident struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	OrgID       uuid.UUID  `db:"org_id" json:"org_id"`
	ClientID    uuid.UUID  `db:"client_id" json:"client_id"`
	ReportedBy  uuid.UUID  `db:"reported_by" json:"reported_by"`
	ShiftID     *uuid.UUID `db:"shift_id" json:"shift_id,omitempty"`
	OccurredAt  time.Time  `db:"occurred_at" json:"occurred_at"`
	Category    string     `db:"category" json:"category"`
	Severity    string     `db:"severity" json:"severity"`
	Description string     `db:"description" json:"description"`
	ActionTaken *string    `db:"action_taken" json:"action_taken,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func validCategory(c string) bool {
	switch c {
	case CategoryFall, CategoryMedication, CategoryInjury, CategoryBehaviour, CategoryProperty, CategoryOther:
		return true
	}
	return false
}

func validSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// validTransition is the status order: OPEN → UNDER_REVIEW → RESOLVED, no
// skipping and no reopening.
func validTransition(from, to string) bool {
	switch from {
	case StatusOpen:
		return to == StatusUnderReview
	case StatusUnderReview:
		return to == StatusResolved
	}
	return false
}
