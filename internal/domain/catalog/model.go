package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Service maps to the service table: something a specialist can be booked
// for. Prices are integer cents; no floats touch commercial fields.
type Service struct {
	ID              uuid.UUID `db:"id" json:"id"`
	BusinessID      uuid.UUID `db:"business_id" json:"business_id"`
	Name            string    `db:"name" json:"name"`
	Description     *string   `db:"description" json:"description,omitempty"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Override maps to the specialist_service table: a per-specialist custom
// price for a service. An active override with a non-null price wins over the
// service base price at booking time.
type Override struct {
	ID               uuid.UUID `db:"id" json:"id"`
	SpecialistID     uuid.UUID `db:"specialist_id" json:"specialist_id"`
	ServiceID        uuid.UUID `db:"service_id" json:"service_id"`
	CustomPriceCents *int64    `db:"custom_price_cents" json:"custom_price_cents,omitempty"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
