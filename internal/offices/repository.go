package offices

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("office not found")

// Repository reads office rows. Offices themselves are not office-scoped;
// agents may read their own office, admins any (enforced in handlers via the
// scope guard).
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository { return &Repository{db: db} }

func (r *Repository) FindByID(ctx context.Context, id string) (Office, error) {
	const q = `
SELECT id, name, city, address, status, created_at, updated_at
FROM offices
WHERE id = $1
`
	var o Office
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID,
		&o.Name,
		&o.City,
		&o.Address,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Office{}, ErrNotFound
		}
		return Office{}, err
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context) ([]Office, error) {
	const q = `
SELECT id, name, city, address, status, created_at, updated_at
FROM offices
ORDER BY name
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Office
	for rows.Next() {
		var o Office
		if err := rows.Scan(&o.ID, &o.Name, &o.City, &o.Address, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
