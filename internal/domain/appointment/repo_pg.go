package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendo/agendo/internal/platform/db"
	"github.com/agendo/agendo/pkg/pagination"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `a.id, a.number, a.business_id, a.branch_id, a.specialist_id, a.client_id,
	a.service_id, a.start_time, a.end_time, a.total_cents, a.status,
	a.notes, a.specialist_notes,
	a.cancel_reason, a.cancel_kind, a.canceled_at, a.canceled_by,
	a.confirmed_at, a.started_at, a.completed_at,
	a.created_at, a.updated_at,
	c.name AS client_name, s.name AS specialist_name,
	sv.name AS service_name, b.name AS branch_name`

const apptJoins = `FROM appointment a
	JOIN client c ON c.id = a.client_id
	JOIN staff s ON s.id = a.specialist_id
	JOIN service sv ON sv.id = a.service_id
	LEFT JOIN branch b ON b.id = a.branch_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.Number, &a.BusinessID, &a.BranchID, &a.SpecialistID, &a.ClientID,
		&a.ServiceID, &a.StartTime, &a.EndTime, &a.TotalCents, &a.Status,
		&a.Notes, &a.SpecialistNotes,
		&a.CancelReason, &a.CancelKind, &a.CanceledAt, &a.CanceledBy,
		&a.ConfirmedAt, &a.StartedAt, &a.CompletedAt,
		&a.CreatedAt, &a.UpdatedAt,
		&a.ClientName, &a.SpecialistName, &a.ServiceName, &a.BranchName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	query := `INSERT INTO appointment (
			id, number, business_id, branch_id, specialist_id, client_id, service_id,
			start_time, end_time, total_cents, status, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`

	return r.conn(ctx).QueryRow(ctx, query,
		a.ID, a.Number, a.BusinessID, a.BranchID, a.SpecialistID, a.ClientID, a.ServiceID,
		a.StartTime, a.EndTime, a.TotalCents, a.Status, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Appointment, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.id = $1 AND a.business_id = $2`, apptCols, apptJoins)
	return scanAppointment(r.conn(ctx).QueryRow(ctx, query, id, businessID))
}

// buildWhere turns a Filter into a WHERE clause over the aliased appointment
// table. Arguments are positional and appended in order.
func buildWhere(f Filter) (string, []any) {
	clauses := []string{"a.business_id = $1"}
	args := []any{f.BusinessID}

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.SpecialistID != nil {
		add("a.specialist_id = $%d", *f.SpecialistID)
	}
	if f.BranchID != nil {
		add("a.branch_id = $%d", *f.BranchID)
	}
	if len(f.BranchIDs) > 0 {
		add("a.branch_id = ANY($%d)", f.BranchIDs)
	}
	if f.ClientID != nil {
		add("a.client_id = $%d", *f.ClientID)
	}
	if f.Status != nil {
		add("a.status = $%d", *f.Status)
	}
	if f.From != nil {
		add("a.start_time >= $%d", *f.From)
	}
	if f.To != nil {
		add("a.start_time <= $%d", *f.To)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*Appointment, int64, error) {
	where, args := buildWhere(f)

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM appointment a %s`, where)
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY a.start_time DESC LIMIT $%d OFFSET $%d`,
		apptCols, apptJoins, where, len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset())

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, a *Appointment) error {
	query := `UPDATE appointment SET
			status = $1, notes = $2, specialist_notes = $3,
			cancel_reason = $4, cancel_kind = $5, canceled_at = $6, canceled_by = $7,
			confirmed_at = $8, started_at = $9, completed_at = $10,
			updated_at = NOW()
		WHERE id = $11 AND business_id = $12
		RETURNING updated_at`

	err := r.conn(ctx).QueryRow(ctx, query,
		a.Status, a.Notes, a.SpecialistNotes,
		a.CancelReason, a.CancelKind, a.CanceledAt, a.CanceledBy,
		a.ConfirmedAt, a.StartedAt, a.CompletedAt,
		a.ID, a.BusinessID,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// HasConflict uses inclusive boundaries on both sides, so an appointment
// ending at 11:00 blocks one starting at 11:00. Terminal statuses never
// block a slot.
func (r *repoPG) HasConflict(ctx context.Context, businessID, specialistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE business_id = $1
			  AND specialist_id = $2
			  AND status NOT IN ('CANCELED', 'COMPLETED')
			  AND start_time <= $4
			  AND end_time >= $3
			  AND ($5::uuid IS NULL OR id <> $5)
		)`

	var exists bool
	err := r.conn(ctx).QueryRow(ctx, query, businessID, specialistID, start, end, excludeID).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListUnresolvedInWindow(ctx context.Context, from, to time.Time) ([]*Appointment, error) {
	query := fmt.Sprintf(`SELECT %s %s
		WHERE a.status IN ('CONFIRMED', 'IN_PROGRESS')
		  AND a.start_time >= $1 AND a.start_time <= $2
		ORDER BY a.start_time`, apptCols, apptJoins)

	rows, err := r.conn(ctx).Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) CountByStatusSince(ctx context.Context, businessID uuid.UUID, since time.Time) (map[Status]int64, error) {
	query := `SELECT status, COUNT(*) FROM appointment
		WHERE business_id = $1 AND start_time >= $2
		GROUP BY status`

	rows, err := r.conn(ctx).Query(ctx, query, businessID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int64)
	for rows.Next() {
		var st Status
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

func (r *repoPG) CountNoShowsSince(ctx context.Context, businessID uuid.UUID, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM appointment
		WHERE business_id = $1 AND start_time >= $2
		  AND status = 'CANCELED' AND cancel_kind = 'NO_SHOW'`

	var n int64
	err := r.conn(ctx).QueryRow(ctx, query, businessID, since).Scan(&n)
	return n, err
}
