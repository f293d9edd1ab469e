// Package store is the document persistence boundary. Records live in named
// collections as JSON documents keyed by a store-generated id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no document matches (single lookups,
	// updates and deletes).
	ErrNotFound = errors.New("not found")
	// ErrUnavailable wraps any failure talking to the backend, timeouts and
	// cancellations included. Callers may retry with backoff.
	ErrUnavailable = errors.New("store unavailable")
	// ErrDuplicate is a uniqueness violation.
	ErrDuplicate = errors.New("duplicate record")
)

// Filter matches documents whose top-level fields equal the given values.
// The "id" key matches the document id. An empty filter matches everything.
// Values must be scalars (string, number, bool or nil); arrays and objects
// are rejected because JSONB containment and plain equality disagree on them.
type Filter map[string]any

// Document is one stored record. Body is a JSON object and always carries
// the document id under "id".
type Document struct {
	ID   string          `db:"id"`
	Body json.RawMessage `db:"body"`
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Body, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// Cursor is a lazy, single-pass sequence of documents. Callers must Close it.
type Cursor interface {
	Next() bool
	Document() (Document, error)
	Err() error
	Close() error
}

// Store is the capability set the rest of the service needs from persistence.
type Store interface {
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	FindMany(ctx context.Context, collection string, filter Filter) (Cursor, error)
	Insert(ctx context.Context, collection string, body any) (Document, error)
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
	DeleteByID(ctx context.Context, collection, id string) (Document, error)
}

// encodeBody turns v into a JSON object without the reserved "id" key.
func encodeBody(v any) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode document: body must be a JSON object: %w", err)
	}
	delete(fields, "id")
	return fields, nil
}

// splitFilter separates the id match from the field matches.
func splitFilter(f Filter) (id string, hasID bool, fields Filter, err error) {
	fields = Filter{}
	for k, v := range f {
		if k == "id" {
			id, hasID = fmt.Sprint(v), true
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return "", false, nil, fmt.Errorf("encode filter %q: %w", k, err)
		}
		if len(raw) > 0 && (raw[0] == '[' || raw[0] == '{') {
			return "", false, nil, fmt.Errorf("filter %q: only scalar values are supported", k)
		}
		fields[k] = v
	}
	return id, hasID, fields, nil
}
