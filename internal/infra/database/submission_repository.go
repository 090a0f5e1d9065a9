package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/xavierca1/codease-contact/internal/entity"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

var schema = map[Dialect]string{
	Postgres: `
		CREATE TABLE IF NOT EXISTS contact_submissions (
			id BIGSERIAL PRIMARY KEY,
			submitted_at TIMESTAMPTZ NOT NULL,
			name TEXT NOT NULL,
			lastname TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			subject TEXT NOT NULL,
			message TEXT NOT NULL
		)`,
	SQLite: `
		CREATE TABLE IF NOT EXISTS contact_submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submitted_at TIMESTAMP NOT NULL,
			name TEXT NOT NULL,
			lastname TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			subject TEXT NOT NULL,
			message TEXT NOT NULL
		)`,
}

// SubmissionRepository is the SQL flavour of the submission log. Each append is a
// single INSERT, so concurrent submissions never overwrite each other.
type SubmissionRepository struct {
	DB      *sql.DB
	dialect Dialect

	schemaMu    sync.Mutex
	schemaReady bool
}

func NewSubmissionRepository(db *sql.DB, dialect Dialect) *SubmissionRepository {
	return &SubmissionRepository{DB: db, dialect: dialect}
}

// ensureSchema creates the table the first time it is needed.
func (r *SubmissionRepository) ensureSchema(ctx context.Context) error {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()

	if r.schemaReady {
		return nil
	}
	ddl, ok := schema[r.dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", r.dialect)
	}
	if _, err := r.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create contact_submissions: %w", err)
	}
	r.schemaReady = true
	return nil
}

func (r *SubmissionRepository) Append(ctx context.Context, row entity.LogRow) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	query := r.rebind(`
		INSERT INTO contact_submissions (submitted_at, name, lastname, email, phone, subject, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.DB.ExecContext(ctx, query,
		row.Timestamp.UTC(),
		row.Name,
		row.Lastname,
		row.Email,
		row.Phone,
		row.Subject,
		row.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) ReadAll(ctx context.Context) ([]entity.LogRow, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT submitted_at, name, lastname, email, phone, subject, message
		FROM contact_submissions
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.LogRow
	for rows.Next() {
		var row entity.LogRow
		if err := rows.Scan(
			&row.Timestamp,
			&row.Name,
			&row.Lastname,
			&row.Email,
			&row.Phone,
			&row.Subject,
			&row.Message,
		); err != nil {
			return nil, err
		}
		row.Timestamp = row.Timestamp.Local()
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, entity.ErrLogNotFound
	}
	return out, nil
}

func (r *SubmissionRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *SubmissionRepository) Close() error {
	return r.DB.Close()
}

// rebind turns ? placeholders into $n for Postgres.
func (r *SubmissionRepository) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
