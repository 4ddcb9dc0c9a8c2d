package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
	"github.com/agendo/agendo/internal/platform/auth"
)

// QueryOptions are the caller-supplied list filters before role scoping is
// applied.
type QueryOptions struct {
	SpecialistID *uuid.UUID
	BranchID     *uuid.UUID
	ClientID     *uuid.UUID
	Status       *Status
	From         *time.Time
	To           *time.Time
}

// ResolveScope combines the actor's role with the requested filters into the
// repository Filter. Rules:
//
//   - A specialist only ever sees their own appointments; a requested
//     specialist filter pointing at someone else is rejected.
//   - When the actor is assigned to more than one branch, results are scoped
//     to those branches. An explicit branch filter replaces that scoping but
//     must name a branch the actor is assigned to (specialists) — other roles
//     may filter by any branch in the business.
//   - All queries carry the actor's business id.
func ResolveScope(actor auth.Actor, opts QueryOptions) (Filter, error) {
	f := Filter{
		BusinessID: actor.BusinessID,
		ClientID:   opts.ClientID,
		Status:     opts.Status,
		From:       opts.From,
		To:         opts.To,
	}

	if actor.Role == auth.RoleSpecialist {
		if opts.SpecialistID != nil && *opts.SpecialistID != actor.UserID {
			return Filter{}, apperr.Authorization("specialists can only view their own appointments")
		}
		id := actor.UserID
		f.SpecialistID = &id
	} else if opts.SpecialistID != nil {
		f.SpecialistID = opts.SpecialistID
	}

	switch {
	case opts.BranchID != nil:
		if actor.Role == auth.RoleSpecialist && len(actor.BranchIDs) > 0 && !actor.HasBranch(*opts.BranchID) {
			return Filter{}, apperr.Authorization("branch outside your assignments")
		}
		f.BranchID = opts.BranchID
	case len(actor.BranchIDs) > 1 && actor.Role != auth.RoleAdmin:
		f.BranchIDs = actor.BranchIDs
	}

	return f, nil
}

// CanViewAppointment reports whether the actor may read the given
// appointment. Non-specialist roles see everything in their business.
func CanViewAppointment(actor auth.Actor, a *Appointment) bool {
	if a.BusinessID != actor.BusinessID {
		return false
	}
	if actor.Role == auth.RoleSpecialist {
		return a.SpecialistID == actor.UserID
	}
	return true
}
