package store

import (
	"context"
	"errors"
)

// Collection is a typed view of one collection. T must be a struct that
// (un)marshals to a JSON object with an "id" field.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Get returns the record with the given id or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	return c.FindOne(ctx, Filter{"id": id})
}

func (c *Collection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	doc, err := c.store.FindOne(ctx, c.name, filter)
	if err != nil {
		return nil, err
	}
	return decode[T](doc)
}

// FindFirst returns the first match (nil when there is none) and whether
// further matches exist. It reads at most two documents.
func (c *Collection[T]) FindFirst(ctx context.Context, filter Filter) (first *T, more bool, err error) {
	cur, err := c.store.FindMany(ctx, c.name, filter)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close()
	for cur.Next() {
		doc, err := cur.Document()
		if err != nil {
			return nil, false, err
		}
		if first != nil {
			return first, true, nil
		}
		if first, err = decode[T](doc); err != nil {
			return nil, false, err
		}
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}
	return first, false, nil
}

// List drains every match into a slice.
func (c *Collection[T]) List(ctx context.Context, filter Filter) ([]*T, error) {
	cur, err := c.store.FindMany(ctx, c.name, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	out := []*T{}
	for cur.Next() {
		doc, err := cur.Document()
		if err != nil {
			return nil, err
		}
		v, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collection[T]) Insert(ctx context.Context, v *T) (*T, error) {
	if v == nil {
		return nil, errors.New("insert: nil record")
	}
	doc, err := c.store.Insert(ctx, c.name, v)
	if err != nil {
		return nil, err
	}
	return decode[T](doc)
}

func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	doc, err := c.store.UpdateFields(ctx, c.name, id, fields)
	if err != nil {
		return nil, err
	}
	return decode[T](doc)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (*T, error) {
	doc, err := c.store.DeleteByID(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	return decode[T](doc)
}

func decode[T any](doc Document) (*T, error) {
	v := new(T)
	if err := doc.Decode(v); err != nil {
		return nil, err
	}
	return v, nil
}
