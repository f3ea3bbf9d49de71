// Package shift covers carer shift scheduling and check-in/out. Visit notes
// reference a shift id, tying documentation to attendance.
package shift

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled  = "SCHEDULED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusMissed     = "MISSED"
)

type Shift struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrgID          uuid.UUID  `db:"org_id" json:"org_id"`
	CarerID        uuid.UUID  `db:"carer_id" json:"carer_id"`
	ClientID       uuid.UUID  `db:"client_id" json:"client_id"`
	ScheduledStart time.Time  `db:"scheduled_start" json:"scheduled_start"`
	ScheduledEnd   time.Time  `db:"scheduled_end" json:"scheduled_end"`
	CheckInAt      *time.Time `db:"check_in_at" json:"check_in_at,omitempty"`
	CheckInLat     *float64   `db:"check_in_lat" json:"check_in_lat,omitempty"`
	CheckInLng     *float64   `db:"check_in_lng" json:"check_in_lng,omitempty"`
	CheckOutAt     *time.Time `db:"check_out_at" json:"check_out_at,omitempty"`
	CheckOutLat    *float64   `db:"check_out_lat" json:"check_out_lat,omitempty"`
	CheckOutLng    *float64   `db:"check_out_lng" json:"check_out_lng,omitempty"`
	Status         string     `db:"status" json:"status"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
