package branch

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = apperr.NotFound("branch not found")

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

var validStatuses = map[string]bool{
	StatusActive: true, StatusInactive: true, StatusMaintenance: true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validate(b *Branch) error {
	if b.BusinessID == uuid.Nil {
		return apperr.Validation("business_id is required")
	}
	if strings.TrimSpace(b.Name) == "" {
		return apperr.Validation("name is required")
	}
	if !codePattern.MatchString(b.Code) {
		return apperr.Validation("code must be alphanumeric with - or _")
	}
	if b.Status != "" && !validStatuses[b.Status] {
		return apperr.Validation("invalid branch status: %s", b.Status)
	}
	for day, h := range b.Hours {
		if !weekdays[day] {
			return apperr.Validation("unknown weekday %q in hours", day)
		}
		if !h.Closed && (h.Open == "" || h.Close == "") {
			return apperr.Validation("open and close times required for %s", day)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, b *Branch) error {
	if err := validate(b); err != nil {
		return err
	}
	if b.Status == "" {
		b.Status = StatusActive
	}
	// The first branch of a business becomes the main one.
	if _, total, err := s.repo.ListByBusiness(ctx, b.BusinessID, 1, 0); err == nil && total == 0 {
		b.IsMain = true
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) GetByID(ctx context.Context, businessID, id uuid.UUID) (*Branch, error) {
	return s.repo.GetByID(ctx, businessID, id)
}

func (s *Service) GetByCode(ctx context.Context, businessID uuid.UUID, code string) (*Branch, error) {
	return s.repo.GetByCode(ctx, businessID, code)
}

func (s *Service) Update(ctx context.Context, b *Branch) error {
	if err := validate(b); err != nil {
		return err
	}
	return s.repo.Update(ctx, b)
}

func (s *Service) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*Branch, int, error) {
	return s.repo.ListByBusiness(ctx, businessID, limit, offset)
}

func (s *Service) SetMain(ctx context.Context, businessID, id uuid.UUID) error {
	return s.repo.SetMain(ctx, businessID, id)
}
