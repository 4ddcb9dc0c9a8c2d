package client

import (
	"context"
	"errors"
	"fmt"

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

const clientCols = `id, business_id, name, email, phone, notes, created_at, updated_at`

func (r *repoPG) scanClient(row pgx.Row) (*Client, error) {
	var cl Client
	err := row.Scan(&cl.ID, &cl.BusinessID, &cl.Name, &cl.Email, &cl.Phone, &cl.Notes,
		&cl.CreatedAt, &cl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &cl, err
}

func (r *repoPG) Create(ctx context.Context, cl *Client) error {
	cl.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO client (id, business_id, name, email, phone, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		cl.ID, cl.BusinessID, cl.Name, cl.Email, cl.Phone, cl.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Client, error) {
	return r.scanClient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+clientCols+` FROM client WHERE id = $1 AND business_id = $2`, id, businessID))
}

func (r *repoPG) Update(ctx context.Context, cl *Client) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE client SET name=$2, email=$3, phone=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		cl.ID, cl.Name, cl.Email, cl.Phone, cl.Notes)
	return err
}

func (r *repoPG) ListByBusiness(ctx context.Context, businessID uuid.UUID, search string, limit, offset int) ([]*Client, int, error) {
	query := `SELECT ` + clientCols + ` FROM client WHERE business_id = $1`
	countQuery := `SELECT COUNT(*) FROM client WHERE business_id = $1`
	args := []interface{}{businessID}

	if search != "" {
		query += ` AND name ILIKE $2`
		countQuery += ` AND name ILIKE $2`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Client
	for rows.Next() {
		cl, err := r.scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cl)
	}
	return items, total, nil
}

func (r *repoPG) Exists(ctx context.Context, businessID, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM client WHERE id = $1 AND business_id = $2)`,
		id, businessID).Scan(&exists)
	return exists, err
}
