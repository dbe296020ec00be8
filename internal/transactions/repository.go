package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// NOTE: This repository assumes the following table exists:
// - transactions (append-only)
//
// It also assumes an idempotency constraint, e.g.:
// UNIQUE (office_id, idempotency_key)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository { return &Repository{db: db} }

const txColumns = `
id, COALESCE(office_id, ''), client_id, created_by, direction,
base, quote, amount_minor, quote_minor, rate_micro, idempotency_key, created_at
`

func scanTx(scan func(dest ...any) error) (Transaction, error) {
	var t Transaction
	err := scan(
		&t.ID,
		&t.OfficeID,
		&t.ClientID,
		&t.CreatedBy,
		&t.Direction,
		&t.Base,
		&t.Quote,
		&t.AmountMinor,
		&t.QuoteMinor,
		&t.RateMicro,
		&t.IdempotencyKey,
		&t.CreatedAt,
	)
	return t, err
}

func (r *Repository) Get(ctx context.Context, id string) (Transaction, bool, error) {
	const q = `
SELECT ` + txColumns + `
FROM transactions
WHERE id = $1
`
	t, err := scanTx(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, false, nil
		}
		return Transaction{}, false, err
	}
	return t, true, nil
}

func (r *Repository) FindByIdempotency(ctx context.Context, officeID, key string) (Transaction, bool, error) {
	const q = `
SELECT ` + txColumns + `
FROM transactions
WHERE office_id = $1 AND idempotency_key = $2
LIMIT 1
`
	t, err := scanTx(r.db.QueryRowContext(ctx, q, officeID, key).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, false, nil
		}
		return Transaction{}, false, err
	}
	return t, true, nil
}

func (r *Repository) Insert(ctx context.Context, t Transaction) error {
	const q = `
INSERT INTO transactions (
  id, office_id, client_id, created_by, direction,
  base, quote, amount_minor, quote_minor, rate_micro, idempotency_key, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)
`
	_, err := r.db.ExecContext(ctx, q,
		t.ID,
		t.OfficeID,
		t.ClientID,
		t.CreatedBy,
		t.Direction,
		t.Base,
		t.Quote,
		t.AmountMinor,
		t.QuoteMinor,
		t.RateMicro,
		t.IdempotencyKey,
		t.CreatedAt,
	)
	return err
}

// List applies all filters in SQL. An empty OfficeID means unrestricted
// (admin); the service never passes an empty office for agents.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]Transaction, error) {
	q := `
SELECT ` + txColumns + `
FROM transactions
WHERE 1=1
`
	args := []any{}
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return placeholder(n)
	}

	if f.OfficeID != "" {
		q += ` AND office_id = ` + arg(f.OfficeID)
	}
	if f.ClientID != "" {
		q += ` AND client_id = ` + arg(f.ClientID)
	}
	if !f.From.IsZero() {
		q += ` AND created_at >= ` + arg(f.From)
	}
	if !f.To.IsZero() {
		q += ` AND created_at < ` + arg(f.To)
	}
	q += `
ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTx(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
