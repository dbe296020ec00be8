package offices

import "time"

// Office is the tenancy unit. Every scoped entity (client, transaction,
// campaign, user with the agent role) carries exactly one office id, set at
// creation and immutable thereafter.
type Office struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	City    string `json:"city,omitempty" db:"city"`
	Address string `json:"address,omitempty" db:"address"`

	Status OfficeStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type OfficeStatus string

const (
	OfficeStatusActive   OfficeStatus = "active"
	OfficeStatusClosed   OfficeStatus = "closed"
)

// Summary is the minimal projection embedded in login responses and user
// listings.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
