package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
)

type mockServiceRepo struct {
	services map[uuid.UUID]*Service
}

func newMockServiceRepo() *mockServiceRepo {
	return &mockServiceRepo{services: make(map[uuid.UUID]*Service)}
}

func (m *mockServiceRepo) Create(_ context.Context, s *Service) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	m.services[s.ID] = s
	return nil
}

func (m *mockServiceRepo) GetByID(_ context.Context, businessID, id uuid.UUID) (*Service, error) {
	s, ok := m.services[id]
	if !ok || s.BusinessID != businessID {
		return nil, ErrServiceNotFound
	}
	return s, nil
}

func (m *mockServiceRepo) Update(_ context.Context, s *Service) error {
	m.services[s.ID] = s
	return nil
}

func (m *mockServiceRepo) ListByBusiness(_ context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*Service, int, error) {
	var result []*Service
	for _, s := range m.services {
		if s.BusinessID == businessID && (!activeOnly || s.Active) {
			result = append(result, s)
		}
	}
	return result, len(result), nil
}

type mockOverrideRepo struct {
	overrides map[string]*Override
}

func newMockOverrideRepo() *mockOverrideRepo {
	return &mockOverrideRepo{overrides: make(map[string]*Override)}
}

func key(specialistID, serviceID uuid.UUID) string {
	return specialistID.String() + "/" + serviceID.String()
}

func (m *mockOverrideRepo) Upsert(_ context.Context, o *Override) error {
	o.ID = uuid.New()
	m.overrides[key(o.SpecialistID, o.ServiceID)] = o
	return nil
}

func (m *mockOverrideRepo) GetActive(_ context.Context, specialistID, serviceID uuid.UUID) (*Override, error) {
	o, ok := m.overrides[key(specialistID, serviceID)]
	if !ok || !o.Active {
		return nil, ErrOverrideNotFound
	}
	return o, nil
}

func (m *mockOverrideRepo) ListBySpecialist(_ context.Context, specialistID uuid.UUID) ([]*Override, error) {
	var result []*Override
	for _, o := range m.overrides {
		if o.SpecialistID == specialistID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *mockOverrideRepo) Deactivate(_ context.Context, specialistID, serviceID uuid.UUID) error {
	if o, ok := m.overrides[key(specialistID, serviceID)]; ok {
		o.Active = false
	}
	return nil
}

func newTestCatalog() (*Catalog, *mockServiceRepo, *mockOverrideRepo) {
	sr := newMockServiceRepo()
	or := newMockOverrideRepo()
	return NewCatalog(sr, or), sr, or
}

func int64p(v int64) *int64 { return &v }

func TestResolvePrice_BasePrice(t *testing.T) {
	cat, _, _ := newTestCatalog()
	businessID := uuid.New()
	svc := &Service{BusinessID: businessID, Name: "Corte", PriceCents: 5000000, DurationMinutes: 30}
	if err := cat.CreateService(context.Background(), svc); err != nil {
		t.Fatal(err)
	}

	got, err := cat.ResolvePrice(context.Background(), businessID, uuid.New(), svc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5000000 {
		t.Errorf("expected base price 5000000, got %d", got)
	}
}

func TestResolvePrice_ActiveOverrideWins(t *testing.T) {
	cat, _, _ := newTestCatalog()
	businessID := uuid.New()
	specialistID := uuid.New()
	svc := &Service{BusinessID: businessID, Name: "Corte", PriceCents: 5000000, DurationMinutes: 30}
	if err := cat.CreateService(context.Background(), svc); err != nil {
		t.Fatal(err)
	}
	err := cat.SetOverride(context.Background(), &Override{
		SpecialistID:     specialistID,
		ServiceID:        svc.ID,
		CustomPriceCents: int64p(4000000),
		Active:           true,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := cat.ResolvePrice(context.Background(), businessID, specialistID, svc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4000000 {
		t.Errorf("expected override price 4000000, got %d", got)
	}
}

func TestResolvePrice_InactiveOverrideIgnored(t *testing.T) {
	cat, _, _ := newTestCatalog()
	businessID := uuid.New()
	specialistID := uuid.New()
	svc := &Service{BusinessID: businessID, Name: "Corte", PriceCents: 5000000, DurationMinutes: 30}
	if err := cat.CreateService(context.Background(), svc); err != nil {
		t.Fatal(err)
	}
	err := cat.SetOverride(context.Background(), &Override{
		SpecialistID:     specialistID,
		ServiceID:        svc.ID,
		CustomPriceCents: int64p(4000000),
		Active:           false,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := cat.ResolvePrice(context.Background(), businessID, specialistID, svc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5000000 {
		t.Errorf("inactive override must not apply, got %d", got)
	}
}

func TestResolvePrice_NullCustomPriceFallsBack(t *testing.T) {
	cat, _, _ := newTestCatalog()
	businessID := uuid.New()
	specialistID := uuid.New()
	svc := &Service{BusinessID: businessID, Name: "Corte", PriceCents: 5000000, DurationMinutes: 30}
	if err := cat.CreateService(context.Background(), svc); err != nil {
		t.Fatal(err)
	}
	err := cat.SetOverride(context.Background(), &Override{
		SpecialistID: specialistID,
		ServiceID:    svc.ID,
		Active:       true,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := cat.ResolvePrice(context.Background(), businessID, specialistID, svc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5000000 {
		t.Errorf("null custom price must fall back to base, got %d", got)
	}
}

func TestResolvePrice_UnknownService(t *testing.T) {
	cat, _, _ := newTestCatalog()
	_, err := cat.ResolvePrice(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestCreateService_Validation(t *testing.T) {
	cat, _, _ := newTestCatalog()
	cases := []*Service{
		{Name: "Corte", PriceCents: 100, DurationMinutes: 30},                               // no business
		{BusinessID: uuid.New(), PriceCents: 100, DurationMinutes: 30},                      // no name
		{BusinessID: uuid.New(), Name: "Corte", PriceCents: -1, DurationMinutes: 30},        // negative price
		{BusinessID: uuid.New(), Name: "Corte", PriceCents: 100, DurationMinutes: 0},        // zero duration
	}
	for i, s := range cases {
		if err := cat.CreateService(context.Background(), s); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestSetOverride_NegativePrice(t *testing.T) {
	cat, _, _ := newTestCatalog()
	err := cat.SetOverride(context.Background(), &Override{
		SpecialistID:     uuid.New(),
		ServiceID:        uuid.New(),
		CustomPriceCents: int64p(-5),
		Active:           true,
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
