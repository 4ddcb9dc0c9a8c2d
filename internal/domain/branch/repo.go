package branch

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*Branch, error)
	GetByCode(ctx context.Context, businessID uuid.UUID, code string) (*Branch, error)
	Update(ctx context.Context, b *Branch) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*Branch, int, error)
	// SetMain promotes the branch and demotes any previous main branch of the
	// same business in a single statement sequence.
	SetMain(ctx context.Context, businessID, id uuid.UUID) error
}
