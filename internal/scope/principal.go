package scope

// Role names. Keep these stable; they are part of auth contracts and stored rows.
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// Account status values as stored on user rows.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Principal is the verified identity acting on a request.
//
// It is rebuilt from the credential store on every request and immutable
// afterwards; role and office always reflect the current store record, not
// whatever the presenting token was minted with.
type Principal struct {
	UserID string

	// Role is RoleAdmin or RoleAgent.
	Role string

	// OfficeID is the office an agent is bound to. Empty for admins.
	// An agent with an empty OfficeID is denied all office-scoped access.
	OfficeID string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
