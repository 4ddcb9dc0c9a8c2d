package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agendo/agendo/internal/domain/appointment"
	"github.com/agendo/agendo/internal/domain/branch"
	"github.com/agendo/agendo/internal/domain/catalog"
	"github.com/agendo/agendo/internal/domain/client"
	"github.com/agendo/agendo/internal/domain/staff"
	"github.com/agendo/agendo/internal/platform/apperr"
	"github.com/agendo/agendo/internal/platform/auth"
	"github.com/agendo/agendo/internal/platform/db"
	"github.com/agendo/agendo/pkg/pagination"
)

func newAppointmentService(t *testing.T) *appointment.Service {
	t.Helper()
	return appointment.NewService(appointment.ServiceDeps{
		Repo:    appointment.NewRepoPG(globalDB.Pool),
		Staff:   staff.NewService(staff.NewRepoPG(globalDB.Pool)),
		Clients: client.NewService(client.NewRepoPG(globalDB.Pool)),
		Branch:  branch.NewService(branch.NewRepoPG(globalDB.Pool)),
		Pricing: catalog.NewCatalog(catalog.NewServiceRepoPG(globalDB.Pool), catalog.NewOverrideRepoPG(globalDB.Pool)),
		InTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, globalDB.Pool, fn)
		},
		Logger: zerolog.Nop(),
	})
}

func receptionistFor(f *fixtures) auth.Actor {
	return auth.Actor{UserID: uuid.New(), BusinessID: f.BusinessID, Role: auth.RoleReceptionist}
}

func bookingInput(f *fixtures, start, end time.Time) appointment.CreateInput {
	return appointment.CreateInput{
		BranchID:     &f.BranchID,
		SpecialistID: f.SpecialistID,
		ClientID:     f.ClientID,
		ServiceID:    f.ServiceID,
		StartTime:    start,
		EndTime:      end,
	}
}

func TestBookingFlow(t *testing.T) {
	ctx := context.Background()
	f := seedBusiness(t, ctx)
	svc := newAppointmentService(t)
	actor := receptionistFor(f)

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	a, err := svc.Create(ctx, actor, bookingInput(f, start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != appointment.StatusPending {
		t.Errorf("status = %s, want PENDING", a.Status)
	}
	if a.TotalCents != 5000000 {
		t.Errorf("total = %d, want base price", a.TotalCents)
	}

	// Read it back with joined display names.
	got, err := svc.Get(ctx, actor, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ClientName != "Ana Torres" || got.SpecialistName != "Laura Diaz" || got.ServiceName != "Haircut" {
		t.Errorf("joined names = %q/%q/%q", got.ClientName, got.SpecialistName, got.ServiceName)
	}
	if got.BranchName == nil || *got.BranchName != "Centro" {
		t.Errorf("branch name = %v, want Centro", got.BranchName)
	}

	// Full forward path.
	for _, target := range []appointment.Status{
		appointment.StatusConfirmed, appointment.StatusInProgress, appointment.StatusCompleted,
	} {
		if _, err := svc.Transition(ctx, actor, a.ID, appointment.TransitionInput{Target: target}); err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}

	got, err = svc.Get(ctx, actor, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ConfirmedAt == nil || got.StartedAt == nil || got.CompletedAt == nil {
		t.Errorf("lifecycle timestamps missing: %+v", got)
	}
}

func TestBookingConflictInDatabase(t *testing.T) {
	ctx := context.Background()
	f := seedBusiness(t, ctx)
	svc := newAppointmentService(t)
	actor := receptionistFor(f)

	start := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	if _, err := svc.Create(ctx, actor, bookingInput(f, start, start.Add(time.Hour))); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Overlapping and back-to-back slots are both rejected.
	for _, offset := range []time.Duration{30 * time.Minute, time.Hour} {
		_, err := svc.Create(ctx, actor, bookingInput(f, start.Add(offset), start.Add(offset+time.Hour)))
		if !apperr.IsKind(err, apperr.KindConflict) {
			t.Errorf("offset %v: err = %v, want conflict", offset, err)
		}
	}

	// A disjoint slot is fine.
	if _, err := svc.Create(ctx, actor, bookingInput(f, start.Add(2*time.Hour), start.Add(3*time.Hour))); err != nil {
		t.Errorf("disjoint slot: %v", err)
	}
}

func TestPriceOverrideInDatabase(t *testing.T) {
	ctx := context.Background()
	f := seedBusiness(t, ctx)
	svc := newAppointmentService(t)
	actor := receptionistFor(f)

	catalogSvc := catalog.NewCatalog(catalog.NewServiceRepoPG(globalDB.Pool), catalog.NewOverrideRepoPG(globalDB.Pool))
	custom := int64(4000000)
	err := catalogSvc.SetOverride(ctx, &catalog.Override{
		SpecialistID:     f.SpecialistID,
		ServiceID:        f.ServiceID,
		CustomPriceCents: &custom,
		Active:           true,
	})
	if err != nil {
		t.Fatalf("SetOverride: %v", err)
	}

	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	a, err := svc.Create(ctx, actor, bookingInput(f, start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.TotalCents != custom {
		t.Errorf("total = %d, want override %d", a.TotalCents, custom)
	}
}

func TestNoShowReconciliationInDatabase(t *testing.T) {
	ctx := context.Background()
	f := seedBusiness(t, ctx)
	svc := newAppointmentService(t)
	actor := receptionistFor(f)
	repo := appointment.NewRepoPG(globalDB.Pool)

	// Booked and confirmed for "yesterday" relative to the reconciliation run.
	start := time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)
	a, err := svc.Create(ctx, actor, bookingInput(f, start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Transition(ctx, actor, a.ID, appointment.TransitionInput{Target: appointment.StatusConfirmed}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	reconciler := appointment.NewReconciler(repo, svc, time.UTC, "", zerolog.Nop())
	runAt := time.Date(2026, 3, 15, 0, 30, 0, 0, time.UTC)

	summary, err := reconciler.Run(ctx, runAt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ProcessedCount < 1 || summary.ErrorCount != 0 {
		t.Fatalf("summary = %+v, want at least our appointment processed cleanly", summary)
	}

	got, err := svc.Get(ctx, actor, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsNoShow() {
		t.Errorf("appointment = %+v, want no-show cancellation", got)
	}
	if got.CanceledBy != nil {
		t.Errorf("CanceledBy = %v, want nil for system cancellation", got.CanceledBy)
	}

	// Second run finds nothing for this business's slot.
	summary, err = reconciler.Run(ctx, runAt)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	for _, r := range summary.Results {
		if r.AppointmentID == a.ID {
			t.Errorf("already-reconciled appointment picked up again")
		}
	}
}

func TestListScopingInDatabase(t *testing.T) {
	ctx := context.Background()
	f := seedBusiness(t, ctx)
	svc := newAppointmentService(t)
	actor := receptionistFor(f)

	start := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	if _, err := svc.Create(ctx, actor, bookingInput(f, start, start.Add(time.Hour))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	specialist := auth.Actor{UserID: f.SpecialistID, BusinessID: f.BusinessID, Role: auth.RoleSpecialist}
	items, total, err := svc.List(ctx, specialist, appointment.QueryOptions{}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("specialist list = %d items (total %d), want 1", len(items), total)
	}

	// A receptionist from another business sees nothing.
	foreign := auth.Actor{UserID: uuid.New(), BusinessID: uuid.New(), Role: auth.RoleReceptionist}
	_, total, err = svc.List(ctx, foreign, appointment.QueryOptions{}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 {
		t.Errorf("foreign business total = %d, want 0", total)
	}
}
