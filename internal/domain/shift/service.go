package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/platform/auth"
)

type Service struct {
	shifts Repository
}

func NewService(shifts Repository) *Service {
	return &Service{shifts: shifts}
}

type ScheduleInput struct {
	CarerID        uuid.UUID `json:"carer_id"`
	ClientID       uuid.UUID `json:"client_id"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
	Notes          *string   `json:"notes,omitempty"`
}

func (s *Service) Schedule(ctx context.Context, actor auth.Actor, in ScheduleInput) (*Shift, error) {
	if in.CarerID == uuid.Nil || in.ClientID == uuid.Nil {
		return nil, &InvalidInputError{Msg: "carer_id and client_id are required"}
	}
	if !in.ScheduledEnd.After(in.ScheduledStart) {
		return nil, &InvalidInputError{Msg: "scheduled_end must be after scheduled_start"}
	}
	sh := &Shift{
		OrgID:          actor.OrgID,
		CarerID:        in.CarerID,
		ClientID:       in.ClientID,
		ScheduledStart: in.ScheduledStart.UTC(),
		ScheduledEnd:   in.ScheduledEnd.UTC(),
		Status:         StatusScheduled,
		Notes:          in.Notes,
	}
	if err := s.shifts.Create(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

type Location struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

// CheckIn moves a scheduled shift to IN_PROGRESS. Only the assigned carer
// may check in, and only once.
func (s *Service) CheckIn(ctx context.Context, actor auth.Actor, id uuid.UUID, loc Location) (*Shift, error) {
	sh, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sh.CarerID != actor.ID && !actor.HasRole(auth.RoleCoordinator) {
		return nil, &StateError{Reason: "only the assigned carer can check in"}
	}
	if sh.Status != StatusScheduled {
		if sh.Status == StatusInProgress {
			return nil, &StateError{Reason: "shift is already checked in"}
		}
		return nil, &StateError{Reason: fmt.Sprintf("cannot check in a %s shift", sh.Status)}
	}
	now := time.Now().UTC()
	sh.CheckInAt = &now
	sh.CheckInLat = loc.Lat
	sh.CheckInLng = loc.Lng
	sh.Status = StatusInProgress
	if err := s.shifts.Update(ctx, sh, StatusScheduled); err != nil {
		return nil, err
	}
	return sh, nil
}

// CheckOut completes an in-progress shift. Check-out before check-in is a
// state error, not a silent fix-up.
func (s *Service) CheckOut(ctx context.Context, actor auth.Actor, id uuid.UUID, loc Location) (*Shift, error) {
	sh, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sh.CarerID != actor.ID && !actor.HasRole(auth.RoleCoordinator) {
		return nil, &StateError{Reason: "only the assigned carer can check out"}
	}
	if sh.Status != StatusInProgress {
		return nil, &StateError{Reason: "shift is not checked in"}
	}
	now := time.Now().UTC()
	sh.CheckOutAt = &now
	sh.CheckOutLat = loc.Lat
	sh.CheckOutLng = loc.Lng
	sh.Status = StatusCompleted
	if err := s.shifts.Update(ctx, sh, StatusInProgress); err != nil {
		return nil, err
	}
	return sh, nil
}

// MarkMissed lets a coordinator close out a shift nobody attended.
func (s *Service) MarkMissed(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Shift, error) {
	sh, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != StatusScheduled {
		return nil, &StateError{Reason: fmt.Sprintf("cannot mark a %s shift missed", sh.Status)}
	}
	sh.Status = StatusMissed
	if err := s.shifts.Update(ctx, sh, StatusScheduled); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Shift, error) {
	return s.get(ctx, actor, id)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, f ListFilter, limit, offset int) ([]*Shift, int, error) {
	f.OrgID = actor.OrgID
	// Carers without a coordinating role only see their own shifts.
	if !actor.HasRole(auth.RoleCoordinator) {
		f.CarerID = &actor.ID
	}
	return s.shifts.List(ctx, f, limit, offset)
}

func (s *Service) get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Shift, error) {
	sh, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.OrgID != actor.OrgID {
		return nil, ErrNotFound
	}
	return sh, nil
}
