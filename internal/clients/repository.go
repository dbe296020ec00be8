package clients

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"exchange-crm/pkg/utils"
)

// Repository persists clients and their segment history.
//
// Scoping contract:
// - Get fetches by id only; the service authorizes against the returned
//   office before the row leaves the package boundary.
// - List takes the office filter as a query argument; an empty filter means
//   unrestricted (admin). Filtering never happens in memory.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository { return &Repository{db: db} }

const clientColumns = `
id, COALESCE(office_id, ''), name, phone, email, segment, notes, created_at, updated_at
`

func (r *Repository) Get(ctx context.Context, id string) (Client, bool, error) {
	const q = `
SELECT ` + clientColumns + `
FROM clients
WHERE id = $1
`
	var c Client
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID,
		&c.OfficeID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.Segment,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, false, nil
		}
		return Client{}, false, err
	}
	return c, true, nil
}

// OwningOffice resolves a client's office without loading the full row.
// Used by booking flows to verify the client belongs to the target office.
func (r *Repository) OwningOffice(ctx context.Context, clientID string) (string, bool, error) {
	const q = `
SELECT COALESCE(office_id, '')
FROM clients
WHERE id = $1
`
	var officeID string
	err := r.db.QueryRowContext(ctx, q, clientID).Scan(&officeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return officeID, true, nil
}

func (r *Repository) List(ctx context.Context, officeID string) ([]Client, error) {
	q := `
SELECT ` + clientColumns + `
FROM clients
`
	args := []any{}
	if officeID != "" {
		q += `WHERE office_id = $1
`
		args = append(args, officeID)
	}
	q += `ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(
			&c.ID, &c.OfficeID, &c.Name, &c.Phone, &c.Email,
			&c.Segment, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, c Client) error {
	const q = `
INSERT INTO clients (id, office_id, name, phone, email, segment, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.OfficeID,
		c.Name,
		c.Phone,
		c.Email,
		c.Segment,
		c.Notes,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// UpdateSegment writes the new segment and the history row in one
// transaction. office_id is deliberately not touchable here.
func (r *Repository) UpdateSegment(ctx context.Context, h SegmentHistory, now time.Time) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const upd = `
UPDATE clients SET segment = $2, updated_at = $3
WHERE id = $1
`
		if _, err := tx.ExecContext(ctx, upd, h.ClientID, h.ToSegment, now); err != nil {
			return err
		}

		const ins = `
INSERT INTO client_segment_history (id, client_id, from_segment, to_segment, changed_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
		_, err := tx.ExecContext(ctx, ins,
			h.ID, h.ClientID, h.FromSegment, h.ToSegment, h.ChangedBy, h.CreatedAt,
		)
		return err
	})
}

func (r *Repository) ListSegmentHistory(ctx context.Context, clientID string) ([]SegmentHistory, error) {
	const q = `
SELECT id, client_id, from_segment, to_segment, changed_by, created_at
FROM client_segment_history
WHERE client_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SegmentHistory
	for rows.Next() {
		var h SegmentHistory
		if err := rows.Scan(&h.ID, &h.ClientID, &h.FromSegment, &h.ToSegment, &h.ChangedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
