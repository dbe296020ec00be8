package users

import "time"

// User is a CRM operator account.
//
// Tenancy invariant: agents must carry a non-empty OfficeID; admins are
// global and carry none. Creation paths reject an agent without a resolvable
// office.
type User struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`

	// PasswordHash is never serialized.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role is scope.RoleAdmin or scope.RoleAgent.
	Role string `json:"role" db:"role"`
	// Status is scope.StatusActive or scope.StatusInactive. Flipping it to
	// inactive cuts the user off on their next request; no token revocation
	// list exists.
	Status string `json:"status" db:"status"`

	OfficeID   string `json:"office_id,omitempty" db:"office_id"`
	OfficeName string `json:"office_name,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
