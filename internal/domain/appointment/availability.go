package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
)

// conflictChecker is the slice of Repository the availability check needs.
type conflictChecker interface {
	HasConflict(ctx context.Context, businessID, specialistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
}

// Checker answers "is this specialist free for [start, end]?".
type Checker struct {
	repo conflictChecker
}

func NewChecker(repo conflictChecker) *Checker { return &Checker{repo: repo} }

// EnsureAvailable validates the window and returns a conflict error when any
// non-terminal appointment of the specialist intersects it. Boundaries are
// inclusive: an appointment ending at 11:00 blocks one starting at 11:00.
func (c *Checker) EnsureAvailable(ctx context.Context, businessID, specialistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	if !end.After(start) {
		return apperr.Validation("end time must be after start time")
	}
	busy, err := c.repo.HasConflict(ctx, businessID, specialistID, start, end, excludeID)
	if err != nil {
		return err
	}
	if busy {
		return apperr.Conflict("specialist is not available in the requested time slot")
	}
	return nil
}
