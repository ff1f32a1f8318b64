// Package store exposes the persistence layer as a uniform document-store
// interface over named collections. All business rules (pair uniqueness,
// participant checks) live in callers; there are no transactions across
// collections and callers must tolerate partial application of multi-step
// updates.
package store

import (
	"context"
	"errors"
)

const (
	CollectionUsers         = "users"
	CollectionConversations = "conversations"
	CollectionMessages      = "messages"
)

// ErrNoDocument is returned by Get and FindOne when nothing matches.
var ErrNoDocument = errors.New("no matching document")

// Doc is a stored document. Field values are strings, bools, numbers,
// nested maps and string slices.
type Doc map[string]any

// Filter selects documents. A plain value matches by equality; operator
// maps built with Ne and All express the only two non-equality conditions
// the callers need.
type Filter map[string]any

// Ne matches documents whose field differs from v.
func Ne(v any) map[string]any {
	return map[string]any{"$ne": v}
}

// All matches documents whose array field contains every given value.
func All(values ...string) map[string]any {
	return map[string]any{"$all": values}
}

// FindOptions control ordering and result size of Find.
type FindOptions struct {
	SortField string
	SortAsc   bool
	Limit     int64
}

// ToInt64 normalizes the numeric types a document field can carry (Go ints
// from the memory store, int32/int64/float64 from bson decoding).
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// AsInt is ToInt64 with zero for non-numeric values.
func AsInt(v any) int {
	if n, ok := ToInt64(v); ok {
		return int(n)
	}
	return 0
}

type Store interface {
	Get(ctx context.Context, collection, id string) (Doc, error)
	FindOne(ctx context.Context, collection string, filter Filter) (Doc, error)
	Find(ctx context.Context, collection string, filter Filter, opts *FindOptions) ([]Doc, error)
	Insert(ctx context.Context, collection string, doc Doc) error
	Update(ctx context.Context, collection, id string, set Doc) error
	UpdateMany(ctx context.Context, collection string, filter Filter, set Doc) (int64, error)
	Increment(ctx context.Context, collection, id, field string, delta int) error
	Close(ctx context.Context) error
}
