package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Role identifies what a staff member is allowed to do.
type Role string

const (
	RoleSpecialist             Role = "SPECIALIST"
	RoleReceptionist           Role = "RECEPTIONIST"
	RoleReceptionistSpecialist Role = "RECEPTIONIST_SPECIALIST"
	RoleAdmin                  Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSpecialist, RoleReceptionist, RoleReceptionistSpecialist, RoleAdmin:
		return true
	}
	return false
}

// CanBook reports whether the role may create appointments on behalf of
// clients. Specialists book through a receptionist.
func (r Role) CanBook() bool {
	return r == RoleReceptionist || r == RoleReceptionistSpecialist || r == RoleAdmin
}

// IsSpecialist reports whether the role performs services and is subject to
// availability checks.
func (r Role) IsSpecialist() bool {
	return r == RoleSpecialist || r == RoleReceptionistSpecialist
}

// Actor is the authenticated caller. It is passed explicitly into services;
// authorization decisions never read ambient request state.
type Actor struct {
	UserID     uuid.UUID
	BusinessID uuid.UUID
	Role       Role
	BranchIDs  []uuid.UUID
}

// HasBranch reports whether the actor is assigned to the given branch.
func (a Actor) HasBranch(branchID uuid.UUID) bool {
	for _, id := range a.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext retrieves the actor set by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}

// ActorFromEcho retrieves the actor from an echo request context.
func ActorFromEcho(c echo.Context) (Actor, bool) {
	return ActorFromContext(c.Request().Context())
}
