package users

import (
	"context"
	"database/sql"
	"errors"

	"exchange-crm/internal/auth"
)

// Repository persists users and doubles as the credential store: it
// implements auth.AccountStore so the resolver and login service read the
// same rows the admin surface mutates.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository { return &Repository{db: db} }

const userColumns = `
u.id, u.email, u.name, u.password_hash, u.role, u.status,
COALESCE(u.office_id, ''), COALESCE(o.name, ''), u.created_at, u.updated_at
`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.OfficeID,
		&u.OfficeName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *Repository) Get(ctx context.Context, id string) (User, bool, error) {
	const q = `
SELECT ` + userColumns + `
FROM users u
LEFT JOIN offices o ON o.id = u.office_id
WHERE u.id = $1
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

// GetByEmail matches case-insensitively; callers pass a normalized email but
// the comparison lowers the stored column as well so legacy rows keep working.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, bool, error) {
	const q = `
SELECT ` + userColumns + `
FROM users u
LEFT JOIN offices o ON o.id = u.office_id
WHERE LOWER(u.email) = LOWER($1)
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}

// List returns users, constrained to one office when officeID is non-empty.
// The filter is part of the query; results are never trimmed in memory.
func (r *Repository) List(ctx context.Context, officeID string) ([]User, error) {
	q := `
SELECT ` + userColumns + `
FROM users u
LEFT JOIN offices o ON o.id = u.office_id
`
	args := []any{}
	if officeID != "" {
		q += `WHERE u.office_id = $1
`
		args = append(args, officeID)
	}
	q += `ORDER BY u.created_at`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Status,
			&u.OfficeID, &u.OfficeName, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, u User) error {
	const q = `
INSERT INTO users (id, email, name, password_hash, role, status, office_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9)
`
	_, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Email,
		u.Name,
		u.PasswordHash,
		u.Role,
		u.Status,
		u.OfficeID,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *Repository) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	const q = `
UPDATE users SET status = $2, updated_at = NOW()
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

/* ===================== auth.AccountStore ===================== */

func (r *Repository) FindByID(ctx context.Context, id string) (auth.Account, bool, error) {
	u, ok, err := r.Get(ctx, id)
	if err != nil || !ok {
		return auth.Account{}, ok, err
	}
	return toAccount(u), true, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (auth.Account, bool, error) {
	u, ok, err := r.GetByEmail(ctx, email)
	if err != nil || !ok {
		return auth.Account{}, ok, err
	}
	return toAccount(u), true, nil
}

func toAccount(u User) auth.Account {
	return auth.Account{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       u.Status,
		OfficeID:     u.OfficeID,
		OfficeName:   u.OfficeName,
	}
}
