package auth

import (
	"context"

	"github.com/google/uuid"
)

// Actor identifies the authenticated caller of a core operation: who they
// are, what they may do, and which organization's records they may touch.
// Services take an Actor argument instead of reaching into request state so
// they stay testable without a simulated session.
type Actor struct {
	ID    uuid.UUID
	Roles []string
	OrgID uuid.UUID
}

// HasRole reports whether the actor holds any of the given roles. The admin
// role implies every other role.
func (a Actor) HasRole(roles ...string) bool {
	for _, has := range a.Roles {
		if has == RoleAdmin {
			return true
		}
		for _, want := range roles {
			if has == want {
				return true
			}
		}
	}
	return false
}

// Role names used across the suite.
const (
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
	RoleCarer       = "carer"
	RoleQA          = "qa"
)

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext retrieves the authenticated actor from context. The zero
// Actor is returned when no authentication middleware ran.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey).(Actor)
	return a
}
