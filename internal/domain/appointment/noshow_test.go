package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// seedAppointment inserts directly into the mock repo, bypassing booking
// validation, so reconciliation fixtures can carry any status.
func seedAppointment(env *testEnv, start time.Time, status Status) *Appointment {
	a := &Appointment{
		ID:           uuid.New(),
		Number:       GenerateNumber(start),
		BusinessID:   env.businessID,
		SpecialistID: env.specialistID,
		ClientID:     env.clientID,
		ServiceID:    env.serviceID,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		TotalCents:   5000000,
		Status:       status,
		ClientName:   "Ana Torres",
		ServiceName:  "Haircut",
	}
	env.repo.appts[a.ID] = a
	return a
}

func newReconciler(env *testEnv) *Reconciler {
	return NewReconciler(env.repo, env.svc, time.UTC, "", zerolog.Nop())
}

func TestReconciler_PreviousDayWindow(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	r := NewReconciler(newMockRepo(), nil, bogota, "", zerolog.Nop())

	// 01:30 local on Jan 15 reconciles the whole of Jan 14.
	now := time.Date(2026, 1, 15, 1, 30, 0, 0, bogota)
	from, to := r.previousDayWindow(now)

	wantFrom := time.Date(2026, 1, 14, 0, 0, 0, 0, bogota)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	wantTo := time.Date(2026, 1, 14, 23, 59, 59, 999999999, bogota)
	if !to.Equal(wantTo) {
		t.Errorf("to = %v, want %v", to, wantTo)
	}
}

func TestReconciler_PreviousDayWindowAcrossDSTShift(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	r := NewReconciler(newMockRepo(), nil, ny, "", zerolog.Nop())

	// Nov 1 2026 is a 25-hour day in New York (clocks fall back at 02:00).
	// The window must still close just before Nov 2 local midnight.
	now := time.Date(2026, 11, 2, 0, 30, 0, 0, ny)
	from, to := r.previousDayWindow(now)

	wantFrom := time.Date(2026, 11, 1, 0, 0, 0, 0, ny)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	wantTo := time.Date(2026, 11, 2, 0, 0, 0, 0, ny).Add(-time.Nanosecond)
	if !to.Equal(wantTo) {
		t.Errorf("to = %v, want %v", to, wantTo)
	}
	if d := wantTo.Sub(wantFrom); d != 25*time.Hour-time.Nanosecond {
		t.Errorf("window length = %v, want 25h minus 1ns", d)
	}
}

func TestReconciler_CancelsUnresolvedFromPreviousDay(t *testing.T) {
	env := newTestEnv(t)
	yesterday := env.now.AddDate(0, 0, -1)

	confirmed := seedAppointment(env, yesterday.Add(2*time.Hour), StatusConfirmed)
	inProgress := seedAppointment(env, yesterday.Add(4*time.Hour), StatusInProgress)
	completed := seedAppointment(env, yesterday.Add(6*time.Hour), StatusCompleted)
	today := seedAppointment(env, env.now.Add(time.Hour), StatusConfirmed)

	summary, err := newReconciler(env).Run(context.Background(), env.now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.TotalFound != 2 || summary.ProcessedCount != 2 || summary.ErrorCount != 0 {
		t.Fatalf("summary = %+v, want 2 found / 2 processed / 0 errors", summary)
	}
	if !summary.Success {
		t.Error("summary.Success = false, want true")
	}

	for _, id := range []uuid.UUID{confirmed.ID, inProgress.ID} {
		got := env.repo.appts[id]
		if got.Status != StatusCanceled {
			t.Errorf("appointment %s status = %s, want CANCELED", id, got.Status)
			continue
		}
		if got.CancelKind == nil || *got.CancelKind != CancelKindNoShow {
			t.Errorf("cancel kind = %v, want NO_SHOW", got.CancelKind)
		}
		if got.CancelReason == nil || *got.CancelReason != DefaultNoShowReason {
			t.Errorf("reason = %v, want %q", got.CancelReason, DefaultNoShowReason)
		}
		if got.CanceledBy != nil {
			t.Errorf("CanceledBy = %v, want nil for system cancellation", got.CanceledBy)
		}
	}

	if env.repo.appts[completed.ID].Status != StatusCompleted {
		t.Error("completed appointment should be untouched")
	}
	if env.repo.appts[today.ID].Status != StatusConfirmed {
		t.Error("today's appointment should be untouched")
	}
}

func TestReconciler_PerItemFailureDoesNotAbort(t *testing.T) {
	env := newTestEnv(t)
	yesterday := env.now.AddDate(0, 0, -1)

	bad := seedAppointment(env, yesterday.Add(2*time.Hour), StatusConfirmed)
	good := seedAppointment(env, yesterday.Add(4*time.Hour), StatusConfirmed)
	env.repo.failUpdateFor = bad.ID

	summary, err := newReconciler(env).Run(context.Background(), env.now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.TotalFound != 2 || summary.ProcessedCount != 1 || summary.ErrorCount != 1 {
		t.Fatalf("summary = %+v, want 2 found / 1 processed / 1 error", summary)
	}
	if summary.Success {
		t.Error("summary.Success = true, want false when any item fails")
	}

	var badResult, goodResult *ReconcileResult
	for i := range summary.Results {
		switch summary.Results[i].AppointmentID {
		case bad.ID:
			badResult = &summary.Results[i]
		case good.ID:
			goodResult = &summary.Results[i]
		}
	}
	if badResult == nil || badResult.Success || badResult.Error == "" {
		t.Errorf("bad result = %+v, want failure with message", badResult)
	}
	if goodResult == nil || !goodResult.Success {
		t.Errorf("good result = %+v, want success", goodResult)
	}
	if env.repo.appts[good.ID].Status != StatusCanceled {
		t.Error("good appointment should still be canceled")
	}
}

func TestReconciler_SecondRunFindsNothing(t *testing.T) {
	env := newTestEnv(t)
	yesterday := env.now.AddDate(0, 0, -1)
	seedAppointment(env, yesterday.Add(2*time.Hour), StatusConfirmed)

	r := newReconciler(env)
	if _, err := r.Run(context.Background(), env.now); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	summary, err := r.Run(context.Background(), env.now)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.TotalFound != 0 {
		t.Errorf("second run found %d, want 0", summary.TotalFound)
	}
}

func TestStats_NoShowPercentage(t *testing.T) {
	env := newTestEnv(t)
	recent := env.now.AddDate(0, 0, -5)

	seedAppointment(env, recent, StatusCompleted)
	seedAppointment(env, recent.Add(time.Hour), StatusCompleted)
	seedAppointment(env, recent.Add(2*time.Hour), StatusCompleted)
	noShow := seedAppointment(env, recent.Add(3*time.Hour), StatusCanceled)
	kind := CancelKindNoShow
	noShow.CancelKind = &kind

	// Outside the window: ignored.
	seedAppointment(env, env.now.AddDate(0, 0, -45), StatusCompleted)

	stats, err := env.svc.Stats(context.Background(), env.businessID, 30)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.NoShows != 1 {
		t.Errorf("no-shows = %d, want 1", stats.NoShows)
	}
	if stats.NoShowPercent != 25 {
		t.Errorf("percent = %v, want 25", stats.NoShowPercent)
	}
	if stats.ByStatus[StatusCompleted] != 3 {
		t.Errorf("completed count = %d, want 3", stats.ByStatus[StatusCompleted])
	}
}

func TestStats_EmptyWindow(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.svc.Stats(context.Background(), env.businessID, 30)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 || stats.NoShowPercent != 0 {
		t.Errorf("stats = %+v, want zeroes", stats)
	}
}
