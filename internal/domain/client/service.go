package client

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = apperr.NotFound("client not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, cl *Client) error {
	if cl.BusinessID == uuid.Nil {
		return apperr.Validation("business_id is required")
	}
	if strings.TrimSpace(cl.Name) == "" {
		return apperr.Validation("name is required")
	}
	return s.repo.Create(ctx, cl)
}

func (s *Service) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Client, error) {
	return s.repo.GetByID(ctx, businessID, id)
}

func (s *Service) Update(ctx context.Context, cl *Client) error {
	if strings.TrimSpace(cl.Name) == "" {
		return apperr.Validation("name is required")
	}
	return s.repo.Update(ctx, cl)
}

func (s *Service) ListByBusiness(ctx context.Context, businessID uuid.UUID, search string, limit, offset int) ([]*Client, int, error) {
	return s.repo.ListByBusiness(ctx, businessID, search, limit, offset)
}

func (s *Service) Exists(ctx context.Context, businessID, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, businessID, id)
}
