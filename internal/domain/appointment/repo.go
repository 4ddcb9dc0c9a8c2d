package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agendo/agendo/pkg/pagination"
)

// ErrNotFound is returned by repositories when no appointment matches.
var ErrNotFound = errors.New("appointment not found")

// Filter narrows List queries. Zero-value fields are ignored. The scope
// resolver fills SpecialistID/BranchIDs from the caller's role before the
// repository ever sees the filter.
type Filter struct {
	BusinessID   uuid.UUID
	SpecialistID *uuid.UUID
	BranchID     *uuid.UUID
	BranchIDs    []uuid.UUID
	ClientID     *uuid.UUID
	Status       *Status
	From         *time.Time
	To           *time.Time
}

// Repository is the persistence contract for appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Appointment, int64, error)
	UpdateStatus(ctx context.Context, a *Appointment) error

	// HasConflict reports whether any non-terminal appointment for the
	// specialist within the business intersects [start, end] inclusively.
	// excludeID, when non-nil, omits that appointment (used when
	// rescheduling).
	HasConflict(ctx context.Context, businessID, specialistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)

	// ListUnresolvedInWindow returns appointments still CONFIRMED or
	// IN_PROGRESS whose start time falls in [from, to], across all
	// businesses. Used by the no-show reconciliation job.
	ListUnresolvedInWindow(ctx context.Context, from, to time.Time) ([]*Appointment, error)

	// CountByStatusSince aggregates appointment counts per status for a
	// business from the given instant onward.
	CountByStatusSince(ctx context.Context, businessID uuid.UUID, since time.Time) (map[Status]int64, error)

	// CountNoShowsSince counts cancellations attributed to no-shows for a
	// business from the given instant onward.
	CountNoShowsSince(ctx context.Context, businessID uuid.UUID, since time.Time) (int64, error)
}
