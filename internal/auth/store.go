package auth

import "context"

// Account is the credential-store projection of a user this package needs.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string

	// Role is scope.RoleAdmin or scope.RoleAgent.
	Role string
	// Status is scope.StatusActive or scope.StatusInactive.
	Status string

	// OfficeID binds agents to their office. Empty for admins.
	OfficeID   string
	OfficeName string
}

// AccountStore is the credential store contract. Implemented by the users
// repository; declared here so auth depends on a capability, not a package.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (Account, bool, error)
	// FindByEmail matches case-insensitively on a trimmed, lowercased email.
	FindByEmail(ctx context.Context, email string) (Account, bool, error)
}
