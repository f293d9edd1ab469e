package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ovaphlow/pitchfork/service-shelter-go/pkg/utilities"
)

// MemoryStore is an in-process Store used for development and tests.
// Documents are returned in insertion order.
type MemoryStore struct {
	mu     sync.RWMutex
	colls  map[string][]memDoc
	unique map[string][]string
}

type memDoc struct {
	id     string
	fields map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{colls: map[string][]memDoc{}, unique: map[string][]string{}}
}

// WithUnique makes inserts and updates into collection fail with
// ErrDuplicate when another document already has the same value for field.
func (s *MemoryStore) WithUnique(collection, field string) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unique[collection] = append(s.unique[collection], field)
	return s
}

func (s *MemoryStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	docs, err := s.match(collection, filter)
	if err != nil {
		return Document{}, err
	}
	if len(docs) == 0 {
		return Document{}, ErrNotFound
	}
	return docs[0], nil
}

func (s *MemoryStore) FindMany(ctx context.Context, collection string, filter Filter) (Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	docs, err := s.match(collection, filter)
	if err != nil {
		return nil, err
	}
	return &sliceCursor{ctx: ctx, docs: docs, pos: -1}, nil
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, body any) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	fields, err := encodeBody(body)
	if err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUniqueLocked(collection, "", fields); err != nil {
		return Document{}, err
	}
	d := memDoc{id: utilities.NewRecordID(), fields: fields}
	s.colls[collection] = append(s.colls[collection], d)
	return d.document()
}

func (s *MemoryStore) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	patch, err := encodeBody(fields)
	if err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.colls[collection]
	for i := range docs {
		if docs[i].id != id {
			continue
		}
		merged := make(map[string]json.RawMessage, len(docs[i].fields)+len(patch))
		for k, v := range docs[i].fields {
			merged[k] = v
		}
		for k, v := range patch {
			merged[k] = v
		}
		if err := s.checkUniqueLocked(collection, id, merged); err != nil {
			return Document{}, err
		}
		docs[i].fields = merged
		return docs[i].document()
	}
	return Document{}, ErrNotFound
}

func (s *MemoryStore) DeleteByID(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.colls[collection]
	for i := range docs {
		if docs[i].id == id {
			d := docs[i]
			s.colls[collection] = append(docs[:i:i], docs[i+1:]...)
			return d.document()
		}
	}
	return Document{}, ErrNotFound
}

func (s *MemoryStore) match(collection string, filter Filter) ([]Document, error) {
	id, hasID, fields, err := splitFilter(filter)
	if err != nil {
		return nil, err
	}
	want, err := encodeBody(fields)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, d := range s.colls[collection] {
		if hasID && d.id != id {
			continue
		}
		if !containsAll(d.fields, want) {
			continue
		}
		doc, err := d.document()
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *MemoryStore) checkUniqueLocked(collection, selfID string, fields map[string]json.RawMessage) error {
	for _, key := range s.unique[collection] {
		v, ok := fields[key]
		if !ok || bytes.Equal(v, []byte("null")) {
			continue
		}
		for _, d := range s.colls[collection] {
			if d.id != selfID && sameJSON(d.fields[key], v) {
				return fmt.Errorf("%w: %s", ErrDuplicate, key)
			}
		}
	}
	return nil
}

func (d memDoc) document() (Document, error) {
	out := make(map[string]json.RawMessage, len(d.fields)+1)
	for k, v := range d.fields {
		out[k] = v
	}
	idRaw, _ := json.Marshal(d.id)
	out["id"] = idRaw
	body, err := json.Marshal(out)
	if err != nil {
		return Document{}, fmt.Errorf("encode document %s: %w", d.id, err)
	}
	return Document{ID: d.id, Body: body}, nil
}

func containsAll(have, want map[string]json.RawMessage) bool {
	for k, v := range want {
		if !sameJSON(have[k], v) {
			return false
		}
	}
	return true
}

func sameJSON(a, b json.RawMessage) bool {
	if a == nil || b == nil {
		return false
	}
	var x, y any
	if json.Unmarshal(a, &x) != nil || json.Unmarshal(b, &y) != nil {
		return false
	}
	xs, _ := json.Marshal(x)
	ys, _ := json.Marshal(y)
	return bytes.Equal(xs, ys)
}

type sliceCursor struct {
	ctx  context.Context
	docs []Document
	pos  int
	err  error
}

func (c *sliceCursor) Next() bool {
	if c.err != nil {
		return false
	}
	if err := c.ctx.Err(); err != nil {
		c.err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		return false
	}
	c.pos++
	return c.pos < len(c.docs)
}

func (c *sliceCursor) Document() (Document, error) {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return Document{}, fmt.Errorf("cursor exhausted")
	}
	return c.docs[c.pos], nil
}

func (c *sliceCursor) Err() error { return c.err }

func (c *sliceCursor) Close() error {
	c.docs = nil
	return nil
}
