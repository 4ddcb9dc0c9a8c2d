package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/agendo/agendo/internal/platform/auth"
)

// Member maps to the staff table. A member either performs services
// (specialist), books them for clients (receptionist), or both.
type Member struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Role       auth.Role `db:"role" json:"role"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// BranchGrant maps to the staff_branch_access table. A row means the staff
// member may work at (and see appointments of) the branch.
type BranchGrant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	BranchID  uuid.UUID `db:"branch_id" json:"branch_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
