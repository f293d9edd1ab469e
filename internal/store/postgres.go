package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-shelter-go/pkg/utilities"
)

// PostgresStore keeps every collection in the `documents` table as JSONB
// (see pkg/database/migrations).
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore { return &PostgresStore{db: db} }

// EnsureUnique creates, if missing, a partial unique index on the top-level
// field of documents in collection. Records without the field are exempt.
func (s *PostgresStore) EnsureUnique(ctx context.Context, collection, field string) error {
	if collection == "" || field == "" {
		return errors.New("ensure unique: collection and field are required")
	}
	q := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON documents ((body->>%s)) WHERE collection = %s AND body ? %s`,
		pq.QuoteIdentifier(uniqueIndexName(collection, field)),
		pq.QuoteLiteral(field), pq.QuoteLiteral(collection), pq.QuoteLiteral(field))
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure unique %s.%s: %w", collection, field, classify(err))
	}
	return nil
}

// uniqueIndexName matches the name used by the users/username migration so
// the default configuration is a no-op.
func uniqueIndexName(collection, field string) string {
	return "idx_documents_" + collection + "_" + field
}

// selected projection: the stored body never contains "id", it is merged back on read.
const docColumns = `id, body || jsonb_build_object('id', id) AS body`

func (s *PostgresStore) where(collection string, filter Filter) (string, []any, error) {
	id, hasID, fields, err := splitFilter(filter)
	if err != nil {
		return "", nil, err
	}
	match, err := json.Marshal(fields)
	if err != nil {
		return "", nil, fmt.Errorf("encode filter: %w", err)
	}
	clause := `collection = $1 AND body @> $2::jsonb`
	args := []any{collection, string(match)}
	if hasID {
		clause += ` AND id = $3`
		args = append(args, id)
	}
	return clause, args, nil
}

func (s *PostgresStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	clause, args, err := s.where(collection, filter)
	if err != nil {
		return Document{}, err
	}
	q := `SELECT ` + docColumns + ` FROM documents WHERE ` + clause + ` ORDER BY created_at, id LIMIT 1`
	var doc Document
	if err := s.db.GetContext(ctx, &doc, q, args...); err != nil {
		return Document{}, classify(err)
	}
	return doc, nil
}

func (s *PostgresStore) FindMany(ctx context.Context, collection string, filter Filter) (Cursor, error) {
	clause, args, err := s.where(collection, filter)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + docColumns + ` FROM documents WHERE ` + clause + ` ORDER BY created_at, id`
	rows, err := s.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err)
	}
	return &rowsCursor{rows: rows}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, body any) (Document, error) {
	fields, err := encodeBody(body)
	if err != nil {
		return Document{}, err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}
	q := `INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb) RETURNING ` + docColumns
	var doc Document
	if err := s.db.GetContext(ctx, &doc, q, collection, utilities.NewRecordID(), string(raw)); err != nil {
		return Document{}, classify(err)
	}
	return doc, nil
}

func (s *PostgresStore) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	patch, err := encodeBody(fields)
	if err != nil {
		return Document{}, err
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return Document{}, fmt.Errorf("encode update: %w", err)
	}
	q := `UPDATE documents SET body = body || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2 RETURNING ` + docColumns
	var doc Document
	if err := s.db.GetContext(ctx, &doc, q, collection, id, string(raw)); err != nil {
		return Document{}, classify(err)
	}
	return doc, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, collection, id string) (Document, error) {
	q := `DELETE FROM documents WHERE collection = $1 AND id = $2 RETURNING ` + docColumns
	var doc Document
	if err := s.db.GetContext(ctx, &doc, q, collection, id); err != nil {
		return Document{}, classify(err)
	}
	return doc, nil
}

// classify maps driver errors onto the store taxonomy. The driver error stays
// in the chain.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

type rowsCursor struct {
	rows *sqlx.Rows
}

func (c *rowsCursor) Next() bool { return c.rows.Next() }

func (c *rowsCursor) Document() (Document, error) {
	var doc Document
	if err := c.rows.StructScan(&doc); err != nil {
		return Document{}, classify(err)
	}
	return doc, nil
}

func (c *rowsCursor) Err() error {
	if err := c.rows.Err(); err != nil {
		return classify(err)
	}
	return nil
}

func (c *rowsCursor) Close() error { return c.rows.Close() }
