package branch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendo/agendo/internal/platform/apperr"
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

const branchCols = `id, business_id, name, code, address, city, latitude, longitude,
	hours, is_main, status, created_at, updated_at`

func (r *repoPG) scanBranch(row pgx.Row) (*Branch, error) {
	var b Branch
	var hours []byte
	err := row.Scan(&b.ID, &b.BusinessID, &b.Name, &b.Code, &b.Address, &b.City,
		&b.Latitude, &b.Longitude, &hours, &b.IsMain, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &b.Hours); err != nil {
			return nil, fmt.Errorf("decode branch hours: %w", err)
		}
	}
	return &b, nil
}

// uniqueViolation is the postgres error code for duplicate keys; the branch
// table has a unique index on (business_id, code).
const uniqueViolation = "23505"

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict("branch code already in use")
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, b *Branch) error {
	b.ID = uuid.New()
	hours, err := json.Marshal(b.Hours)
	if err != nil {
		return fmt.Errorf("encode branch hours: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO branch (id, business_id, name, code, address, city, latitude, longitude,
			hours, is_main, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		b.ID, b.BusinessID, b.Name, b.Code, b.Address, b.City, b.Latitude, b.Longitude,
		hours, b.IsMain, b.Status)
	return mapPGError(err)
}

func (r *repoPG) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Branch, error) {
	return r.scanBranch(r.conn(ctx).QueryRow(ctx,
		`SELECT `+branchCols+` FROM branch WHERE id = $1 AND business_id = $2`, id, businessID))
}

func (r *repoPG) GetByCode(ctx context.Context, businessID uuid.UUID, code string) (*Branch, error) {
	return r.scanBranch(r.conn(ctx).QueryRow(ctx,
		`SELECT `+branchCols+` FROM branch WHERE business_id = $1 AND code = $2`, businessID, code))
}

func (r *repoPG) Update(ctx context.Context, b *Branch) error {
	hours, err := json.Marshal(b.Hours)
	if err != nil {
		return fmt.Errorf("encode branch hours: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE branch SET name=$2, code=$3, address=$4, city=$5, latitude=$6, longitude=$7,
			hours=$8, status=$9, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Name, b.Code, b.Address, b.City, b.Latitude, b.Longitude, hours, b.Status)
	return mapPGError(err)
}

func (r *repoPG) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*Branch, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM branch WHERE business_id = $1`, businessID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+branchCols+` FROM branch WHERE business_id = $1 ORDER BY is_main DESC, name ASC LIMIT $2 OFFSET $3`,
		businessID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Branch
	for rows.Next() {
		b, err := r.scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *repoPG) SetMain(ctx context.Context, businessID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE branch SET is_main = FALSE, updated_at = NOW() WHERE business_id = $1 AND is_main`, businessID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx,
		`UPDATE branch SET is_main = TRUE, updated_at = NOW() WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
