package appointment

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Status of an appointment. The forward path is
// PENDING → CONFIRMED → IN_PROGRESS → COMPLETED; CANCELED is reachable from
// every non-terminal status. COMPLETED and CANCELED are terminal.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCanceled   Status = "CANCELED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// allowedTransitions is the state machine: for each current status, the set
// of statuses it may move to.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:    {StatusConfirmed: true, StatusCanceled: true},
	StatusConfirmed:  {StatusInProgress: true, StatusCompleted: true, StatusCanceled: true},
	StatusInProgress: {StatusCompleted: true, StatusCanceled: true},
}

// CanTransition reports whether moving from s to target is permitted.
func (s Status) CanTransition(target Status) bool {
	return allowedTransitions[s][target]
}

// CancelKind distinguishes why an appointment was cancelled without string
// matching on the reason text.
type CancelKind string

const (
	CancelKindUser   CancelKind = "USER"
	CancelKindNoShow CancelKind = "NO_SHOW"
	CancelKindSystem CancelKind = "SYSTEM"
)

// Appointment maps to the appointment table: one scheduled service
// engagement. TotalCents is resolved once at creation and never recomputed,
// even if the service price or override changes later.
type Appointment struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Number       string     `db:"number" json:"number"`
	BusinessID   uuid.UUID  `db:"business_id" json:"business_id"`
	BranchID     *uuid.UUID `db:"branch_id" json:"branch_id,omitempty"`
	SpecialistID uuid.UUID  `db:"specialist_id" json:"specialist_id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	ServiceID    uuid.UUID  `db:"service_id" json:"service_id"`

	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
	TotalCents int64     `db:"total_cents" json:"total_cents"`
	Status     Status    `db:"status" json:"status"`

	Notes           *string `db:"notes" json:"notes,omitempty"`
	SpecialistNotes *string `db:"specialist_notes" json:"specialist_notes,omitempty"`

	CancelReason *string     `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CancelKind   *CancelKind `db:"cancel_kind" json:"cancel_kind,omitempty"`
	CanceledAt   *time.Time  `db:"canceled_at" json:"canceled_at,omitempty"`
	CanceledBy   *uuid.UUID  `db:"canceled_by" json:"canceled_by,omitempty"`

	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Joined display fields, populated on reads.
	ClientName     string  `db:"client_name" json:"client_name,omitempty"`
	SpecialistName string  `db:"specialist_name" json:"specialist_name,omitempty"`
	ServiceName    string  `db:"service_name" json:"service_name,omitempty"`
	BranchName     *string `db:"branch_name" json:"branch_name,omitempty"`
}

// IsNoShow reports whether the appointment was cancelled by the
// reconciliation job.
func (a *Appointment) IsNoShow() bool {
	return a.Status == StatusCanceled && a.CancelKind != nil && *a.CancelKind == CancelKindNoShow
}

// Overlaps reports whether [aStart, aEnd] intersects [bStart, bEnd] with
// inclusive boundaries on both ends: back-to-back appointments count as
// overlapping. Kept inclusive for parity with the booking rules the business
// runs on today; flagged for product review before ever loosening it.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// GenerateNumber produces a human-readable, time-derived appointment number,
// e.g. APT-20260131-143022-0481.
func GenerateNumber(now time.Time) string {
	return fmt.Sprintf("APT-%s-%04d", now.Format("20060102-150405"), rand.Intn(10000))
}
