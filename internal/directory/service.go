// Package directory serves the shelter, service and bed-amount records.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
)

var ErrInvalidInput = errors.New("invalid input")

// Record is implemented by the pointer types in the entity package.
type Record[T any] interface {
	*T
	Problems() []string
	MutableFields() []string
}

// RecordService implements create, read, update and delete for one record
// type stored in one collection.
type RecordService[T any, P Record[T]] struct {
	kind   string
	coll   *store.Collection[T]
	logger *zap.SugaredLogger
}

// NewRecordService binds kind (used in logs and errors) to a collection.
func NewRecordService[T any, P Record[T]](s store.Store, collection, kind string, logger *zap.SugaredLogger) *RecordService[T, P] {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RecordService[T, P]{kind: kind, coll: store.NewCollection[T](s, collection), logger: logger}
}

func (s *RecordService[T, P]) Kind() string { return s.kind }

func (s *RecordService[T, P]) Create(ctx context.Context, v *T) (*T, error) {
	if err := validate(P(v)); err != nil {
		return nil, err
	}
	out, err := s.coll.Insert(ctx, v)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("record created", "kind", s.kind)
	return out, nil
}

func (s *RecordService[T, P]) List(ctx context.Context) ([]*T, error) {
	return s.coll.List(ctx, nil)
}

func (s *RecordService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	return s.coll.Get(ctx, id)
}

// Update applies the mutable fields present in patch. Other keys are
// ignored; the merged record must still be valid.
func (s *RecordService[T, P]) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*T, error) {
	allowed := P(new(T)).MutableFields()
	fields := make(map[string]any, len(patch))
	for k, v := range patch {
		if slices.Contains(allowed, k) {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields, expected one of %s", ErrInvalidInput, strings.Join(allowed, ", "))
	}

	cur, err := s.coll.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, err := merge(cur, fields)
	if err != nil {
		return nil, err
	}
	if err := validate(P(merged)); err != nil {
		return nil, err
	}
	return s.coll.Update(ctx, id, fields)
}

func (s *RecordService[T, P]) Delete(ctx context.Context, id string) (*T, error) {
	out, err := s.coll.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("record deleted", "kind", s.kind, "id", id)
	return out, nil
}

func validate[T any, P Record[T]](v P) error {
	if p := v.Problems(); len(p) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(p, "; "))
	}
	return nil
}

// merge overlays fields on a copy of cur, decoding into a fresh T so type
// errors in the patch surface as invalid input.
func merge[T any](cur *T, fields map[string]any) (*T, error) {
	raw, err := json.Marshal(cur)
	if err != nil {
		return nil, err
	}
	obj := map[string]any{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	for k, v := range fields {
		obj[k] = v
	}
	raw, err = json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return out, nil
}
