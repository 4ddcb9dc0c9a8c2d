package client

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, cl *Client) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*Client, error)
	Update(ctx context.Context, cl *Client) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, search string, limit, offset int) ([]*Client, int, error)
	Exists(ctx context.Context, businessID, id uuid.UUID) (bool, error)
}
