package clients

import "time"

// Client is a CRM customer record.
//
// Tenancy invariant: OfficeID is set at creation and immutable thereafter.
// Every read and write path must clear the scope guard against it.
type Client struct {
	ID       string `json:"id" db:"id"`
	OfficeID string `json:"office_id" db:"office_id"`

	Name  string `json:"name" db:"name"`
	Phone string `json:"phone,omitempty" db:"phone"`
	Email string `json:"email,omitempty" db:"email"`

	// Segment drives campaign targeting. Transitions are recorded in
	// segment history.
	Segment Segment `json:"segment" db:"segment"`

	Notes string `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Segment string

const (
	SegmentNew     Segment = "new"
	SegmentRegular Segment = "regular"
	SegmentVIP     Segment = "vip"
	SegmentDormant Segment = "dormant"
)

func validSegment(s Segment) bool {
	switch s {
	case SegmentNew, SegmentRegular, SegmentVIP, SegmentDormant:
		return true
	default:
		return false
	}
}

// SegmentHistory is an append-only record of segment transitions.
//
// It carries no office column: its owning office is derived transitively
// through the client row, and access checks always go through that
// resolution.
type SegmentHistory struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`

	FromSegment Segment `json:"from_segment" db:"from_segment"`
	ToSegment   Segment `json:"to_segment" db:"to_segment"`

	ChangedBy string `json:"changed_by" db:"changed_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
