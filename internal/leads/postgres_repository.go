package leads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by the gateway.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresWriter inserts leads through the restricted role. The role holds
// INSERT only, so the row is built client-side instead of using RETURNING.
type PostgresWriter struct {
	db  DB
	now func() time.Time
}

// NewPostgresWriter wraps a pool connected as the restricted role. A nil DB
// yields a writer that reports ErrStoreNotConfigured.
func NewPostgresWriter(db DB) *PostgresWriter {
	return &PostgresWriter{db: db, now: time.Now}
}

// Insert performs a single-row insert.
func (w *PostgresWriter) Insert(ctx context.Context, c *Candidate) (*Lead, error) {
	if w == nil || w.db == nil {
		return nil, ErrStoreNotConfigured
	}
	lead := &Lead{
		ID:           uuid.NewString(),
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		DiscountCode: c.discountCode(),
		CreatedAt:    w.now().UTC().Truncate(time.Microsecond),
	}
	query := `
		INSERT INTO leads (id, name, email, phone, discount_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := w.db.Exec(ctx, query,
		lead.ID,
		nullable(lead.Name),
		nullable(lead.Email),
		nullable(lead.Phone),
		lead.DiscountCode,
		lead.CreatedAt,
	); err != nil {
		return nil, &StoreError{Op: "insert", Err: err}
	}
	return lead, nil
}

// PostgresReader lists leads through the elevated role.
type PostgresReader struct {
	db DB
}

// NewPostgresReader wraps a pool connected as the elevated role.
func NewPostgresReader(db DB) *PostgresReader {
	return &PostgresReader{db: db}
}

// List returns the full table, newest first.
func (r *PostgresReader) List(ctx context.Context) ([]*Lead, error) {
	if r == nil || r.db == nil {
		return nil, ErrStoreNotConfigured
	}
	query := `
		SELECT id::text, name, email, phone, discount_code, created_at
		FROM leads
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.Name,
			&lead.Email,
			&lead.Phone,
			&lead.DiscountCode,
			&lead.CreatedAt,
		); err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		lead.CreatedAt = lead.CreatedAt.UTC()
		out = append(out, &lead)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return out, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
