package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a mutex-guarded in-process Store used by tests and local
// development. Documents are deep-copied on the way in and out so callers
// can never alias internal state.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Doc
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Doc),
	}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNoDocument
	}
	return copyDoc(doc), nil
}

func (s *MemoryStore) FindOne(_ context.Context, collection string, filter Filter) (Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			return copyDoc(doc), nil
		}
	}
	return nil, ErrNoDocument
}

func (s *MemoryStore) Find(_ context.Context, collection string, filter Filter, opts *FindOptions) ([]Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Doc
	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			result = append(result, copyDoc(doc))
		}
	}

	if opts != nil && opts.SortField != "" {
		field, asc := opts.SortField, opts.SortAsc
		sort.Slice(result, func(i, j int) bool {
			less := compareValues(result[i][field], result[j][field]) < 0
			if asc {
				return less
			}
			return !less
		})
	}
	if opts != nil && opts.Limit > 0 && int64(len(result)) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result, nil
}

func (s *MemoryStore) Insert(_ context.Context, collection string, doc Doc) error {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("document has no string id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Doc)
	}
	if _, exists := s.collections[collection][id]; exists {
		return fmt.Errorf("duplicate id %q in collection %q", id, collection)
	}
	s.collections[collection][id] = copyDoc(doc)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, set Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNoDocument
	}
	for path, value := range set {
		setPath(doc, path, copyValue(value))
	}
	return nil
}

func (s *MemoryStore) UpdateMany(_ context.Context, collection string, filter Filter, set Doc) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for _, doc := range s.collections[collection] {
		if !matches(doc, filter) {
			continue
		}
		for path, value := range set {
			setPath(doc, path, copyValue(value))
		}
		updated++
	}
	return updated, nil
}

func (s *MemoryStore) Increment(_ context.Context, collection, id, field string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNoDocument
	}
	current := AsInt(getPath(doc, field))
	setPath(doc, field, current+delta)
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

// matches evaluates the filter against a document: plain values compare by
// equality, operator maps support $ne and $all.
func matches(doc Doc, filter Filter) bool {
	for field, cond := range filter {
		value := getPath(doc, field)

		op, isOp := cond.(map[string]any)
		if !isOp {
			if !equal(value, cond) {
				return false
			}
			continue
		}

		for name, arg := range op {
			switch name {
			case "$ne":
				if equal(value, arg) {
					return false
				}
			case "$all":
				if !containsAll(value, arg) {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

func equal(a, b any) bool {
	if ai, aok := ToInt64(a); aok {
		if bi, bok := ToInt64(b); bok {
			return ai == bi
		}
	}
	return reflect.DeepEqual(a, b)
}

func containsAll(value, arg any) bool {
	wanted, ok := arg.([]string)
	if !ok {
		return false
	}

	var have []string
	switch v := value.(type) {
	case []string:
		have = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				have = append(have, s)
			}
		}
	default:
		return false
	}

	for _, w := range wanted {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func compareValues(a, b any) int {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs)
	}
	ai, aok := ToInt64(a)
	bi, bok := ToInt64(b)
	if aok && bok {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return 0
}

// getPath resolves a possibly dotted field path ("unread_count.<user-id>").
func getPath(doc Doc, path string) any {
	parts := strings.Split(path, ".")
	var current any = map[string]any(doc)
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			if d, ok := current.(Doc); ok {
				m = map[string]any(d)
			} else {
				return nil
			}
		}
		current = m[part]
	}
	return current
}

// setPath writes a value at a possibly dotted field path, creating
// intermediate maps as needed.
func setPath(doc Doc, path string, value any) {
	parts := strings.Split(path, ".")
	current := map[string]any(doc)
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			if d, isDoc := current[part].(Doc); isDoc {
				next = map[string]any(d)
			} else {
				next = make(map[string]any)
			}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func copyDoc(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = copyValue(item)
		}
		return out
	case Doc:
		return map[string]any(copyDoc(value))
	case []string:
		out := make([]string, len(value))
		copy(out, value)
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
