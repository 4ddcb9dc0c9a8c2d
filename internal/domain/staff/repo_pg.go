package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendo/agendo/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const memberCols = `id, business_id, name, email, phone, role, active, created_at, updated_at`

func (r *repoPG) scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.BusinessID, &m.Name, &m.Email, &m.Phone, &m.Role,
		&m.Active, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Member) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, business_id, name, email, phone, role, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.BusinessID, m.Name, m.Email, m.Phone, m.Role, m.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Member, error) {
	return r.scanMember(r.conn(ctx).QueryRow(ctx,
		`SELECT `+memberCols+` FROM staff WHERE id = $1 AND business_id = $2`, id, businessID))
}

func (r *repoPG) Update(ctx context.Context, m *Member) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET name=$2, email=$3, phone=$4, role=$5, active=$6, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Email, m.Phone, m.Role, m.Active)
	return err
}

func (r *repoPG) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*Member, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM staff WHERE business_id = $1`, businessID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+memberCols+` FROM staff WHERE business_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`,
		businessID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

func (r *repoPG) GrantBranchAccess(ctx context.Context, g *BranchGrant) error {
	g.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff_branch_access (id, staff_id, branch_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (staff_id, branch_id) DO NOTHING`,
		g.ID, g.StaffID, g.BranchID)
	return err
}

func (r *repoPG) RevokeBranchAccess(ctx context.Context, staffID, branchID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM staff_branch_access WHERE staff_id = $1 AND branch_id = $2`, staffID, branchID)
	return err
}

func (r *repoPG) HasBranchAccess(ctx context.Context, staffID, branchID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM staff_branch_access WHERE staff_id = $1 AND branch_id = $2)`,
		staffID, branchID).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListBranchIDs(ctx context.Context, staffID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT branch_id FROM staff_branch_access WHERE staff_id = $1`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
