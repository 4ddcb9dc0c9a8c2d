package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultNoShowReason is recorded on appointments the reconciliation job
// force-cancels.
const DefaultNoShowReason = "no-show — automatic cancellation"

// ReconcileResult is the per-appointment outcome of a reconciliation run.
type ReconcileResult struct {
	AppointmentID     uuid.UUID `json:"appointment_id"`
	AppointmentNumber string    `json:"appointment_number"`
	ClientName        string    `json:"client_name"`
	ServiceName       string    `json:"service_name"`
	Success           bool      `json:"success"`
	Error             string    `json:"error,omitempty"`
}

// ReconcileSummary is the structured report of a reconciliation run.
type ReconcileSummary struct {
	Success        bool              `json:"success"`
	Message        string            `json:"message"`
	TotalFound     int               `json:"total_found"`
	ProcessedCount int               `json:"processed_count"`
	ErrorCount     int               `json:"error_count"`
	Results        []ReconcileResult `json:"results"`
}

// Reconciler force-cancels appointments that were expected to happen the
// previous day but never reached a terminal state. Intended to run once
// shortly after local midnight.
type Reconciler struct {
	repo   Repository
	svc    *Service
	loc    *time.Location
	reason string
	log    zerolog.Logger
}

func NewReconciler(repo Repository, svc *Service, loc *time.Location, reason string, log zerolog.Logger) *Reconciler {
	if loc == nil {
		loc = time.UTC
	}
	if reason == "" {
		reason = DefaultNoShowReason
	}
	return &Reconciler{repo: repo, svc: svc, loc: loc, reason: reason, log: log}
}

// previousDayWindow returns the previous local calendar day as an inclusive
// [00:00:00, 23:59:59.999999999] range.
func (r *Reconciler) previousDayWindow(now time.Time) (time.Time, time.Time) {
	local := now.In(r.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	// Both bounds come from time.Date so the window stays aligned to local
	// midnights on days where a DST shift makes the day longer or shorter.
	from := midnight.AddDate(0, 0, -1)
	to := midnight.Add(-time.Nanosecond)
	return from, to
}

// Run scans the previous day's CONFIRMED and IN_PROGRESS appointments and
// cancels each as a no-show with a nil acting user. A failure on one record
// is logged and collected; it never aborts the rest of the batch.
func (r *Reconciler) Run(ctx context.Context, now time.Time) (*ReconcileSummary, error) {
	from, to := r.previousDayWindow(now)

	r.log.Info().
		Time("window_from", from).
		Time("window_to", to).
		Msg("no-show reconciliation started")

	candidates, err := r.repo.ListUnresolvedInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list unresolved appointments: %w", err)
	}

	summary := &ReconcileSummary{
		TotalFound: len(candidates),
		Results:    make([]ReconcileResult, 0, len(candidates)),
	}

	for _, a := range candidates {
		res := ReconcileResult{
			AppointmentID:     a.ID,
			AppointmentNumber: a.Number,
			ClientName:        a.ClientName,
			ServiceName:       a.ServiceName,
		}

		reason := r.reason
		if err := r.svc.cancel(ctx, a, CancelKindNoShow, &reason, nil); err != nil {
			res.Error = err.Error()
			summary.ErrorCount++
			r.log.Error().Err(err).
				Str("appointment_id", a.ID.String()).
				Str("number", a.Number).
				Msg("no-show cancellation failed")
		} else {
			res.Success = true
			summary.ProcessedCount++
		}
		summary.Results = append(summary.Results, res)
	}

	summary.Success = summary.ErrorCount == 0
	summary.Message = fmt.Sprintf("processed %d of %d unresolved appointments",
		summary.ProcessedCount, summary.TotalFound)

	r.log.Info().
		Int("total_found", summary.TotalFound).
		Int("processed", summary.ProcessedCount).
		Int("errors", summary.ErrorCount).
		Msg("no-show reconciliation finished")
	return summary, nil
}

// NoShowStats is the trailing-window no-show rate for a business.
type NoShowStats struct {
	WindowDays    int     `json:"window_days"`
	Total         int64   `json:"total_appointments"`
	NoShows       int64   `json:"no_shows"`
	NoShowPercent float64 `json:"no_show_percent"`

	ByStatus map[Status]int64 `json:"by_status"`
}

// Stats computes the share of no-show cancellations over all appointments
// started in the trailing windowDays days.
func (s *Service) Stats(ctx context.Context, businessID uuid.UUID, windowDays int) (*NoShowStats, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := s.now().AddDate(0, 0, -windowDays)

	byStatus, err := s.repo.CountByStatusSince(ctx, businessID, since)
	if err != nil {
		return nil, err
	}
	noShows, err := s.repo.CountNoShowsSince(ctx, businessID, since)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	stats := &NoShowStats{
		WindowDays: windowDays,
		Total:      total,
		NoShows:    noShows,
		ByStatus:   byStatus,
	}
	if total > 0 {
		stats.NoShowPercent = float64(noShows) / float64(total) * 100
	}
	return stats, nil
}
