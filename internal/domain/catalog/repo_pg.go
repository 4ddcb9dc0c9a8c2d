package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendo/agendo/internal/platform/db"
)

// =========== Service Repository ===========

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository { return &serviceRepoPG{pool: pool} }

func (r *serviceRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const serviceCols = `id, business_id, name, description, price_cents, duration_minutes,
	active, created_at, updated_at`

func (r *serviceRepoPG) scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Description, &s.PriceCents,
		&s.DurationMinutes, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	return &s, err
}

func (r *serviceRepoPG) Create(ctx context.Context, s *Service) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service (id, business_id, name, description, price_cents, duration_minutes, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.BusinessID, s.Name, s.Description, s.PriceCents, s.DurationMinutes, s.Active)
	return err
}

func (r *serviceRepoPG) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Service, error) {
	return r.scanService(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceCols+` FROM service WHERE id = $1 AND business_id = $2`, id, businessID))
}

func (r *serviceRepoPG) Update(ctx context.Context, s *Service) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE service SET name=$2, description=$3, price_cents=$4, duration_minutes=$5,
			active=$6, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Description, s.PriceCents, s.DurationMinutes, s.Active)
	return err
}

func (r *serviceRepoPG) ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*Service, int, error) {
	filter := ``
	if activeOnly {
		filter = ` AND active`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM service WHERE business_id = $1`+filter, businessID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+serviceCols+` FROM service WHERE business_id = $1`+filter+
			` ORDER BY name ASC LIMIT $2 OFFSET $3`,
		businessID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		s, err := r.scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

// =========== Override Repository ===========

type overrideRepoPG struct{ pool *pgxpool.Pool }

func NewOverrideRepoPG(pool *pgxpool.Pool) OverrideRepository { return &overrideRepoPG{pool: pool} }

func (r *overrideRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const overrideCols = `id, specialist_id, service_id, custom_price_cents, active, created_at, updated_at`

func (r *overrideRepoPG) scanOverride(row pgx.Row) (*Override, error) {
	var o Override
	err := row.Scan(&o.ID, &o.SpecialistID, &o.ServiceID, &o.CustomPriceCents,
		&o.Active, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOverrideNotFound
	}
	return &o, err
}

func (r *overrideRepoPG) Upsert(ctx context.Context, o *Override) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO specialist_service (id, specialist_id, service_id, custom_price_cents, active)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (specialist_id, service_id)
		DO UPDATE SET custom_price_cents = EXCLUDED.custom_price_cents,
			active = EXCLUDED.active, updated_at = NOW()`,
		o.ID, o.SpecialistID, o.ServiceID, o.CustomPriceCents, o.Active)
	return err
}

func (r *overrideRepoPG) GetActive(ctx context.Context, specialistID, serviceID uuid.UUID) (*Override, error) {
	return r.scanOverride(r.conn(ctx).QueryRow(ctx,
		`SELECT `+overrideCols+` FROM specialist_service
		WHERE specialist_id = $1 AND service_id = $2 AND active`,
		specialistID, serviceID))
}

func (r *overrideRepoPG) ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]*Override, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+overrideCols+` FROM specialist_service WHERE specialist_id = $1`, specialistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Override
	for rows.Next() {
		o, err := r.scanOverride(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *overrideRepoPG) Deactivate(ctx context.Context, specialistID, serviceID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE specialist_service SET active = FALSE, updated_at = NOW()
		WHERE specialist_id = $1 AND service_id = $2`,
		specialistID, serviceID)
	return err
}
