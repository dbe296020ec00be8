package scope

import "errors"

// ErrForbidden is returned by services when a request explicitly names an
// office the principal may not act in. Lookups addressed only by resource id
// collapse a deny into the service's not-found error instead, so tenants
// cannot probe each other's id space.
var ErrForbidden = errors.New("forbidden")

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

const (
	reasonAdmin            = "admin"
	reasonOfficeMatch      = "office match"
	reasonOfficeMismatch   = "office mismatch"
	reasonOfficeUnresolved = "office unresolved"
)

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

// Authorize decides whether p may access a resource owned by resourceOfficeID.
//
// This is the single decision function for office tenancy; domain services must
// not re-implement the office comparison. Deny-by-default:
//   - admins are allowed everywhere
//   - agents are allowed only in their own office
//   - an empty resource office (orphaned row) is denied for non-admins and
//     indicates a data-integrity problem at the call site, not business logic
func Authorize(p Principal, resourceOfficeID string) Decision {
	if p.IsAdmin() {
		return allow(reasonAdmin)
	}
	if resourceOfficeID == "" {
		return deny(reasonOfficeUnresolved)
	}
	if p.OfficeID == "" || p.OfficeID != resourceOfficeID {
		return deny(reasonOfficeMismatch)
	}
	return allow(reasonOfficeMatch)
}

// OrphanedResource reports whether d denied because the resource has no
// resolvable owning office.
func OrphanedResource(d Decision) bool {
	return !d.Allowed && d.Reason == reasonOfficeUnresolved
}

// ListScope returns the office filter to apply to a listing query before it
// executes. restricted=false means no filter (admin); otherwise officeID must
// be pushed into the query as an equality constraint. Listings are never
// filtered after the fact in memory.
//
// An agent without an office gets a restricted scope with an empty office id;
// repositories match it against no rows.
func ListScope(p Principal) (officeID string, restricted bool) {
	if p.IsAdmin() {
		return "", false
	}
	return p.OfficeID, true
}
