package staff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
	"github.com/agendo/agendo/internal/platform/auth"
)

type mockRepo struct {
	members map[uuid.UUID]*Member
	grants  map[uuid.UUID][]uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		members: make(map[uuid.UUID]*Member),
		grants:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockRepo) Create(_ context.Context, mem *Member) error {
	mem.ID = uuid.New()
	mem.CreatedAt = time.Now()
	mem.UpdatedAt = time.Now()
	m.members[mem.ID] = mem
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, businessID, id uuid.UUID) (*Member, error) {
	mem, ok := m.members[id]
	if !ok || mem.BusinessID != businessID {
		return nil, ErrNotFound
	}
	return mem, nil
}

func (m *mockRepo) Update(_ context.Context, mem *Member) error {
	m.members[mem.ID] = mem
	return nil
}

func (m *mockRepo) ListByBusiness(_ context.Context, businessID uuid.UUID, limit, offset int) ([]*Member, int, error) {
	var result []*Member
	for _, mem := range m.members {
		if mem.BusinessID == businessID {
			result = append(result, mem)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) GrantBranchAccess(_ context.Context, g *BranchGrant) error {
	for _, id := range m.grants[g.StaffID] {
		if id == g.BranchID {
			return nil
		}
	}
	m.grants[g.StaffID] = append(m.grants[g.StaffID], g.BranchID)
	return nil
}

func (m *mockRepo) RevokeBranchAccess(_ context.Context, staffID, branchID uuid.UUID) error {
	ids := m.grants[staffID]
	for i, id := range ids {
		if id == branchID {
			m.grants[staffID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRepo) HasBranchAccess(_ context.Context, staffID, branchID uuid.UUID) (bool, error) {
	for _, id := range m.grants[staffID] {
		if id == branchID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) ListBranchIDs(_ context.Context, staffID uuid.UUID) ([]uuid.UUID, error) {
	return m.grants[staffID], nil
}

func TestCreate_Valid(t *testing.T) {
	svc := NewService(newMockRepo())
	m := &Member{
		BusinessID: uuid.New(),
		Name:       "Ana Torres",
		Email:      "ana@example.com",
		Role:       auth.RoleSpecialist,
	}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Active {
		t.Error("new members must start active")
	}
	if m.ID == uuid.Nil {
		t.Error("id not assigned")
	}
}

func TestCreate_Invalid(t *testing.T) {
	svc := NewService(newMockRepo())
	cases := []struct {
		name string
		m    *Member
	}{
		{"missing business", &Member{Name: "A", Email: "a@b.c", Role: auth.RoleSpecialist}},
		{"missing name", &Member{BusinessID: uuid.New(), Email: "a@b.c", Role: auth.RoleSpecialist}},
		{"missing email", &Member{BusinessID: uuid.New(), Name: "A", Role: auth.RoleSpecialist}},
		{"bad role", &Member{BusinessID: uuid.New(), Name: "A", Email: "a@b.c", Role: "OWNER"}},
		{"admin role", &Member{BusinessID: uuid.New(), Name: "A", Email: "a@b.c", Role: auth.RoleAdmin}},
	}
	for _, tc := range cases {
		err := svc.Create(context.Background(), tc.m)
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestGetByID_WrongBusiness(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	m := &Member{BusinessID: uuid.New(), Name: "A", Email: "a@b.c", Role: auth.RoleSpecialist}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetByID(context.Background(), uuid.New(), m.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("cross-business lookup must be not-found, got %v", err)
	}
}

func TestBranchGrants(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	businessID := uuid.New()
	m := &Member{BusinessID: businessID, Name: "A", Email: "a@b.c", Role: auth.RoleSpecialist}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	branchID := uuid.New()

	if err := svc.GrantBranchAccess(context.Background(), businessID, m.ID, branchID); err != nil {
		t.Fatalf("grant: %v", err)
	}
	ok, err := svc.HasBranchAccess(context.Background(), m.ID, branchID)
	if err != nil || !ok {
		t.Fatalf("expected access, got ok=%v err=%v", ok, err)
	}

	// Granting to an unknown staff member fails
	err = svc.GrantBranchAccess(context.Background(), businessID, uuid.New(), branchID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not-found for unknown staff, got %v", err)
	}

	if err := svc.RevokeBranchAccess(context.Background(), m.ID, branchID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, _ = svc.HasBranchAccess(context.Background(), m.ID, branchID)
	if ok {
		t.Error("access should be revoked")
	}
}
