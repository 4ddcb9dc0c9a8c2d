package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*Member, error)
	Update(ctx context.Context, m *Member) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*Member, int, error)
	// Branch grants
	GrantBranchAccess(ctx context.Context, g *BranchGrant) error
	RevokeBranchAccess(ctx context.Context, staffID, branchID uuid.UUID) error
	HasBranchAccess(ctx context.Context, staffID, branchID uuid.UUID) (bool, error)
	ListBranchIDs(ctx context.Context, staffID uuid.UUID) ([]uuid.UUID, error)
}
