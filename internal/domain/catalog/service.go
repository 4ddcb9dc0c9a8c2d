package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
)

var (
	ErrServiceNotFound  = apperr.NotFound("service not found")
	ErrOverrideNotFound = apperr.NotFound("price override not found")
)

type Catalog struct {
	services  ServiceRepository
	overrides OverrideRepository
}

func NewCatalog(services ServiceRepository, overrides OverrideRepository) *Catalog {
	return &Catalog{services: services, overrides: overrides}
}

func (c *Catalog) CreateService(ctx context.Context, s *Service) error {
	if s.BusinessID == uuid.Nil {
		return apperr.Validation("business_id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return apperr.Validation("name is required")
	}
	if s.PriceCents < 0 {
		return apperr.Validation("price must not be negative")
	}
	if s.DurationMinutes <= 0 {
		return apperr.Validation("duration must be positive")
	}
	s.Active = true
	return c.services.Create(ctx, s)
}

func (c *Catalog) GetService(ctx context.Context, businessID, id uuid.UUID) (*Service, error) {
	return c.services.GetByID(ctx, businessID, id)
}

func (c *Catalog) UpdateService(ctx context.Context, s *Service) error {
	if s.PriceCents < 0 {
		return apperr.Validation("price must not be negative")
	}
	if s.DurationMinutes <= 0 {
		return apperr.Validation("duration must be positive")
	}
	return c.services.Update(ctx, s)
}

func (c *Catalog) ListServices(ctx context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*Service, int, error) {
	return c.services.ListByBusiness(ctx, businessID, activeOnly, limit, offset)
}

func (c *Catalog) SetOverride(ctx context.Context, o *Override) error {
	if o.SpecialistID == uuid.Nil || o.ServiceID == uuid.Nil {
		return apperr.Validation("specialist_id and service_id are required")
	}
	if o.CustomPriceCents != nil && *o.CustomPriceCents < 0 {
		return apperr.Validation("custom price must not be negative")
	}
	return c.overrides.Upsert(ctx, o)
}

func (c *Catalog) ListOverrides(ctx context.Context, specialistID uuid.UUID) ([]*Override, error) {
	return c.overrides.ListBySpecialist(ctx, specialistID)
}

func (c *Catalog) DeactivateOverride(ctx context.Context, specialistID, serviceID uuid.UUID) error {
	return c.overrides.Deactivate(ctx, specialistID, serviceID)
}

// ResolvePrice returns the effective price in cents for booking the
// specialist/service pair: an active override with a non-null custom price
// wins, otherwise the service base price. Evaluated exactly once at booking
// time; the result is stored on the appointment and never recomputed.
func (c *Catalog) ResolvePrice(ctx context.Context, businessID, specialistID, serviceID uuid.UUID) (int64, error) {
	svc, err := c.services.GetByID(ctx, businessID, serviceID)
	if err != nil {
		return 0, err
	}

	o, err := c.overrides.GetActive(ctx, specialistID, serviceID)
	if err != nil {
		if errors.Is(err, ErrOverrideNotFound) {
			return svc.PriceCents, nil
		}
		return 0, err
	}
	if o.CustomPriceCents != nil {
		return *o.CustomPriceCents, nil
	}
	return svc.PriceCents, nil
}
