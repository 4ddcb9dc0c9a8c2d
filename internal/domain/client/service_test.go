package client

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/apperr"
)

type mockRepo struct {
	clients map[uuid.UUID]*Client
}

func newMockRepo() *mockRepo {
	return &mockRepo{clients: make(map[uuid.UUID]*Client)}
}

func (m *mockRepo) Create(_ context.Context, cl *Client) error {
	cl.ID = uuid.New()
	m.clients[cl.ID] = cl
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, businessID, id uuid.UUID) (*Client, error) {
	cl, ok := m.clients[id]
	if !ok || cl.BusinessID != businessID {
		return nil, ErrNotFound
	}
	return cl, nil
}

func (m *mockRepo) Update(_ context.Context, cl *Client) error {
	m.clients[cl.ID] = cl
	return nil
}

func (m *mockRepo) ListByBusiness(_ context.Context, businessID uuid.UUID, search string, limit, offset int) ([]*Client, int, error) {
	var out []*Client
	for _, cl := range m.clients {
		if cl.BusinessID != businessID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(cl.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, cl)
	}
	return out, len(out), nil
}

func (m *mockRepo) Exists(_ context.Context, businessID, id uuid.UUID) (bool, error) {
	cl, ok := m.clients[id]
	return ok && cl.BusinessID == businessID, nil
}

func TestCreate_RequiresName(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), &Client{BusinessID: uuid.New(), Name: "   "})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	err = svc.Create(context.Background(), &Client{Name: "Ana Torres"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("missing business: err = %v, want validation error", err)
	}
}

func TestExists_ScopedToBusiness(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	businessID := uuid.New()

	cl := &Client{BusinessID: businessID, Name: "Ana Torres"}
	if err := svc.Create(context.Background(), cl); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := svc.Exists(context.Background(), businessID, cl.ID)
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v; want true", ok, err)
	}

	ok, err = svc.Exists(context.Background(), uuid.New(), cl.ID)
	if err != nil || ok {
		t.Fatalf("Exists in foreign business = %v, %v; want false", ok, err)
	}
}

func TestGetByID_WrongBusiness(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	cl := &Client{BusinessID: uuid.New(), Name: "Ana Torres"}
	if err := svc.Create(context.Background(), cl); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.GetByID(context.Background(), uuid.New(), cl.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListByBusiness_Search(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	businessID := uuid.New()

	for _, name := range []string{"Ana Torres", "Carlos Pérez", "Anabel Soto"} {
		if err := svc.Create(context.Background(), &Client{BusinessID: businessID, Name: name}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, total, err := svc.ListByBusiness(context.Background(), businessID, "ana", 10, 0)
	if err != nil {
		t.Fatalf("ListByBusiness: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("got %d items (total %d), want 2", len(items), total)
	}
}
