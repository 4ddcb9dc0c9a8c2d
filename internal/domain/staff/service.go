package staff

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
	"github.com/agendo/agendo/internal/platform/auth"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = apperr.NotFound("staff member not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, m *Member) error {
	if m.BusinessID == uuid.Nil {
		return apperr.Validation("business_id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return apperr.Validation("name is required")
	}
	if strings.TrimSpace(m.Email) == "" {
		return apperr.Validation("email is required")
	}
	if !m.Role.Valid() || m.Role == auth.RoleAdmin {
		return apperr.Validation("invalid staff role: %s", m.Role)
	}
	m.Active = true
	return s.repo.Create(ctx, m)
}

func (s *Service) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Member, error) {
	return s.repo.GetByID(ctx, businessID, id)
}

func (s *Service) Update(ctx context.Context, m *Member) error {
	if m.Role != "" && (!m.Role.Valid() || m.Role == auth.RoleAdmin) {
		return apperr.Validation("invalid staff role: %s", m.Role)
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*Member, int, error) {
	return s.repo.ListByBusiness(ctx, businessID, limit, offset)
}

func (s *Service) GrantBranchAccess(ctx context.Context, businessID, staffID, branchID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, businessID, staffID); err != nil {
		return err
	}
	return s.repo.GrantBranchAccess(ctx, &BranchGrant{StaffID: staffID, BranchID: branchID})
}

func (s *Service) RevokeBranchAccess(ctx context.Context, staffID, branchID uuid.UUID) error {
	return s.repo.RevokeBranchAccess(ctx, staffID, branchID)
}

func (s *Service) HasBranchAccess(ctx context.Context, staffID, branchID uuid.UUID) (bool, error) {
	return s.repo.HasBranchAccess(ctx, staffID, branchID)
}

func (s *Service) ListBranchIDs(ctx context.Context, staffID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ListBranchIDs(ctx, staffID)
}
