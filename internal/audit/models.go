package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - office_id is recorded when resolvable; login failures and data-integrity
//   events may legitimately lack one.
// - actor and ip capture are best-effort; do not block critical flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.

type Event struct {
	ID       string `json:"id" db:"id"`
	OfficeID string `json:"office_id,omitempty" db:"office_id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event (if applicable).
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	// Prefer X-Forwarded-For processing at the edge; store the resolved client IP here.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the event type).
	TargetUserID  string `json:"target_user_id,omitempty" db:"target_user_id"`
	ClientID      string `json:"client_id,omitempty" db:"client_id"`
	TransactionID string `json:"transaction_id,omitempty" db:"transaction_id"`
	CampaignID    string `json:"campaign_id,omitempty" db:"campaign_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin       EventType = "login"
	EventTypeLoginFailed EventType = "login_failed"
	EventTypeAdminAction EventType = "admin_action"
	// EventTypeDataIntegrity flags rows whose owning office could not be
	// resolved during an authorization check (orphaned data).
	EventTypeDataIntegrity EventType = "data_integrity"
	// EventTypeRecommendation records which campaign was recommended to a
	// client, for conversion reporting.
	EventTypeRecommendation EventType = "recommendation"
)
