package branch

import (
	"time"

	"github.com/google/uuid"
)

// Status of a branch.
const (
	StatusActive      = "ACTIVE"
	StatusInactive    = "INACTIVE"
	StatusMaintenance = "MAINTENANCE"
)

// DayHours is the operating window for a single weekday.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed"`
}

// WeekHours maps lowercase weekday names to operating hours.
type WeekHours map[string]DayHours

// Branch maps to the branch table: a physical location of a business.
type Branch struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	Name       string    `db:"name" json:"name"`
	Code       string    `db:"code" json:"code"`
	Address    *string   `db:"address" json:"address,omitempty"`
	City       *string   `db:"city" json:"city,omitempty"`
	Latitude   *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude  *float64  `db:"longitude" json:"longitude,omitempty"`
	Hours      WeekHours `db:"hours" json:"hours,omitempty"`
	IsMain     bool      `db:"is_main" json:"is_main"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether appointments may be booked at this branch.
func (b *Branch) IsActive() bool {
	return b.Status == StatusActive
}
