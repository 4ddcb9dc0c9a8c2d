package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agendo/agendo/internal/domain/branch"
	"github.com/agendo/agendo/internal/domain/catalog"
	"github.com/agendo/agendo/internal/domain/staff"
	"github.com/agendo/agendo/internal/platform/apperr"
	"github.com/agendo/agendo/internal/platform/auth"
	"github.com/agendo/agendo/pkg/pagination"
)

// defaultCancelReason is recorded when a user cancellation carries no reason.
const defaultCancelReason = "canceled by user"

// noShowReason is recorded when staff mark a no-show without giving a reason.
const noShowReason = "client did not show up"

// StaffDirectory is the slice of the staff service the booking flow needs.
type StaffDirectory interface {
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*staff.Member, error)
	HasBranchAccess(ctx context.Context, staffID, branchID uuid.UUID) (bool, error)
}

// ClientDirectory checks that a client exists within the business.
type ClientDirectory interface {
	Exists(ctx context.Context, businessID, id uuid.UUID) (bool, error)
}

// BranchDirectory looks up branches for booking validation.
type BranchDirectory interface {
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*branch.Branch, error)
}

// PriceResolver resolves the amount charged for a service, honoring
// per-specialist overrides.
type PriceResolver interface {
	GetService(ctx context.Context, businessID, id uuid.UUID) (*catalog.Service, error)
	ResolvePrice(ctx context.Context, businessID, specialistID, serviceID uuid.UUID) (int64, error)
}

// TxRunner executes fn inside a database transaction carried on the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service implements the appointment lifecycle: booking, status transitions,
// cancellation and scoped reads.
type Service struct {
	repo    Repository
	checker *Checker
	staff   StaffDirectory
	clients ClientDirectory
	branch  BranchDirectory
	pricing PriceResolver
	inTx    TxRunner
	now     func() time.Time
	log     zerolog.Logger
}

type ServiceDeps struct {
	Repo    Repository
	Staff   StaffDirectory
	Clients ClientDirectory
	Branch  BranchDirectory
	Pricing PriceResolver
	InTx    TxRunner
	Now     func() time.Time
	Logger  zerolog.Logger
}

func NewService(d ServiceDeps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.InTx == nil {
		d.InTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{
		repo:    d.Repo,
		checker: NewChecker(d.Repo),
		staff:   d.Staff,
		clients: d.Clients,
		branch:  d.Branch,
		pricing: d.Pricing,
		inTx:    d.InTx,
		now:     d.Now,
		log:     d.Logger,
	}
}

// CreateInput is a booking request.
type CreateInput struct {
	BranchID     *uuid.UUID
	SpecialistID uuid.UUID
	ClientID     uuid.UUID
	ServiceID    uuid.UUID
	StartTime    time.Time
	EndTime      time.Time
	Notes        *string
}

// Create books a new PENDING appointment. Only receptionist roles may book.
// Validation and the availability check run inside a single transaction with
// the insert, so two racing requests for the same slot cannot both land.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Appointment, error) {
	if !actor.Role.CanBook() {
		return nil, apperr.Authorization("only receptionists can create appointments")
	}
	if in.SpecialistID == uuid.Nil || in.ClientID == uuid.Nil || in.ServiceID == uuid.Nil {
		return nil, apperr.Validation("specialist, client and service are required")
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, apperr.Validation("end time must be after start time")
	}

	var appt *Appointment
	err := s.inTx(ctx, func(ctx context.Context) error {
		member, err := s.staff.GetByID(ctx, actor.BusinessID, in.SpecialistID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return apperr.Validation("specialist not found in this business")
			}
			return err
		}
		if !member.Active {
			return apperr.Validation("specialist is not active")
		}
		if !member.Role.IsSpecialist() {
			return apperr.Validation("staff member cannot perform services")
		}

		svc, err := s.pricing.GetService(ctx, actor.BusinessID, in.ServiceID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return apperr.Validation("service not found in this business")
			}
			return err
		}
		if !svc.Active {
			return apperr.Validation("service is not active")
		}

		exists, err := s.clients.Exists(ctx, actor.BusinessID, in.ClientID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.Validation("client not found in this business")
		}

		if in.BranchID != nil {
			br, err := s.branch.GetByID(ctx, actor.BusinessID, *in.BranchID)
			if err != nil {
				if apperr.IsKind(err, apperr.KindNotFound) {
					return apperr.Validation("branch not found in this business")
				}
				return err
			}
			if !br.IsActive() {
				return apperr.Validation("branch is not active")
			}
			granted, err := s.staff.HasBranchAccess(ctx, in.SpecialistID, *in.BranchID)
			if err != nil {
				return err
			}
			if !granted {
				return apperr.Validation("specialist does not work at this branch")
			}
		}

		if err := s.checker.EnsureAvailable(ctx, actor.BusinessID, in.SpecialistID, in.StartTime, in.EndTime, nil); err != nil {
			return err
		}

		total, err := s.pricing.ResolvePrice(ctx, actor.BusinessID, in.SpecialistID, in.ServiceID)
		if err != nil {
			return err
		}

		appt = &Appointment{
			ID:           uuid.New(),
			Number:       GenerateNumber(s.now()),
			BusinessID:   actor.BusinessID,
			BranchID:     in.BranchID,
			SpecialistID: in.SpecialistID,
			ClientID:     in.ClientID,
			ServiceID:    in.ServiceID,
			StartTime:    in.StartTime,
			EndTime:      in.EndTime,
			TotalCents:   total,
			Status:       StatusPending,
			Notes:        in.Notes,
		}
		return s.repo.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("number", appt.Number).
		Str("specialist_id", appt.SpecialistID.String()).
		Time("start_time", appt.StartTime).
		Msg("appointment created")
	return appt, nil
}

// Get returns a single appointment the actor is allowed to see.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, actor.BusinessID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("appointment not found")
		}
		return nil, err
	}
	if !CanViewAppointment(actor, a) {
		return nil, apperr.NotFound("appointment not found")
	}
	return a, nil
}

// List returns appointments within the actor's scope.
func (s *Service) List(ctx context.Context, actor auth.Actor, opts QueryOptions, p pagination.Params) ([]*Appointment, int64, error) {
	f, err := ResolveScope(actor, opts)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, p)
}

// TransitionInput carries the requested status change.
type TransitionInput struct {
	Target       Status
	Notes        *string
	CancelReason *string
}

// TargetNoShow is accepted as a transition target: it produces a CANCELED
// record with cancel kind NO_SHOW, attributed to the acting staff member.
const TargetNoShow Status = "NO_SHOW"

// specialistTargets are the statuses a pure specialist may move an
// appointment to. Booking stays with receptionists; everything after the
// client arrives (or fails to) belongs to the specialist.
var specialistTargets = map[Status]bool{
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCanceled:   true,
	TargetNoShow:     true,
}

// Transition moves an appointment to a new status, stamping the matching
// timestamp. Terminal appointments reject every transition with a conflict.
func (s *Service) Transition(ctx context.Context, actor auth.Actor, id uuid.UUID, in TransitionInput) (*Appointment, error) {
	if !in.Target.Valid() && in.Target != TargetNoShow {
		return nil, apperr.Validation("unknown status")
	}
	if actor.Role == auth.RoleSpecialist && !specialistTargets[in.Target] {
		return nil, apperr.Validation("specialists cannot set this status")
	}
	switch in.Target {
	case StatusCanceled:
		return s.Cancel(ctx, actor, id, in.CancelReason, in.Notes)
	case TargetNoShow:
		return s.MarkNoShow(ctx, actor, id, in.CancelReason, in.Notes)
	}

	a, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == auth.RoleSpecialist && a.SpecialistID != actor.UserID {
		return nil, apperr.Authorization("specialists can only update their own appointments")
	}

	if a.Status.Terminal() {
		return nil, apperr.Conflict("appointment is already " + string(a.Status))
	}
	if !a.Status.CanTransition(in.Target) {
		return nil, apperr.Conflict("cannot move from " + string(a.Status) + " to " + string(in.Target))
	}

	now := s.now()
	a.Status = in.Target
	switch in.Target {
	case StatusConfirmed:
		a.ConfirmedAt = &now
	case StatusInProgress:
		a.StartedAt = &now
	case StatusCompleted:
		a.CompletedAt = &now
	}

	applyNotes(actor, a, in.Notes)

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("status", string(a.Status)).
		Msg("appointment status updated")
	return a, nil
}

// Cancel marks an appointment CANCELED on behalf of the actor. Terminal
// appointments reject cancellation with a conflict error.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, id uuid.UUID, reason, notes *string) (*Appointment, error) {
	a, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleSpecialist && a.SpecialistID != actor.UserID {
		return nil, apperr.Authorization("specialists can only cancel their own appointments")
	}
	if a.Status.Terminal() {
		return nil, apperr.Conflict("appointment is already " + string(a.Status))
	}

	applyNotes(actor, a, notes)
	by := actor.UserID
	if err := s.cancel(ctx, a, CancelKindUser, reason, &by); err != nil {
		return nil, err
	}
	return a, nil
}

// MarkNoShow cancels an appointment with cancel kind NO_SHOW on behalf of a
// staff member who observed the client not arriving.
func (s *Service) MarkNoShow(ctx context.Context, actor auth.Actor, id uuid.UUID, reason, notes *string) (*Appointment, error) {
	a, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleSpecialist && a.SpecialistID != actor.UserID {
		return nil, apperr.Authorization("specialists can only update their own appointments")
	}
	if a.Status.Terminal() {
		return nil, apperr.Conflict("appointment is already " + string(a.Status))
	}
	if reason == nil || *reason == "" {
		r := noShowReason
		reason = &r
	}
	applyNotes(actor, a, notes)
	by := actor.UserID
	if err := s.cancel(ctx, a, CancelKindNoShow, reason, &by); err != nil {
		return nil, err
	}
	return a, nil
}

// applyNotes routes free-text notes to the field matching the actor's role:
// specialists write specialist_notes, everyone else writes notes.
func applyNotes(actor auth.Actor, a *Appointment, notes *string) {
	if notes == nil {
		return
	}
	if actor.Role.IsSpecialist() {
		a.SpecialistNotes = notes
	} else {
		a.Notes = notes
	}
}

// cancel applies the cancellation fields and persists. canceledBy is nil for
// system-initiated cancellations.
func (s *Service) cancel(ctx context.Context, a *Appointment, kind CancelKind, reason *string, canceledBy *uuid.UUID) error {
	now := s.now()
	r := defaultCancelReason
	if reason != nil && *reason != "" {
		r = *reason
	}

	a.Status = StatusCanceled
	a.CancelReason = &r
	a.CancelKind = &kind
	a.CanceledAt = &now
	a.CanceledBy = canceledBy

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return err
	}

	s.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("cancel_kind", string(kind)).
		Msg("appointment canceled")
	return nil
}
