// README: Account aggregate, role enum, and allow-list entry.
package account

import (
	"time"

	"breeze/internal/types"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the three known roles. Invalid roles are
// rejected before they can persist.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRider, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID        types.ID      `json:"_id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	GoogleID  string        `json:"-"`
	Role      Role          `json:"role"`
	Approved  bool          `json:"isApproved"`
	Address   types.Address `json:"address"`
	Phone     string        `json:"phone"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ApprovedEmail pre-authorizes an email for a given role before first login.
type ApprovedEmail struct {
	ID        types.ID  `json:"_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
