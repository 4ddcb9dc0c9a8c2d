package catalog

import (
	"context"

	"github.com/google/uuid"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*Service, error)
	Update(ctx context.Context, s *Service) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*Service, int, error)
}

type OverrideRepository interface {
	Upsert(ctx context.Context, o *Override) error
	GetActive(ctx context.Context, specialistID, serviceID uuid.UUID) (*Override, error)
	ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]*Override, error)
	Deactivate(ctx context.Context, specialistID, serviceID uuid.UUID) error
}
