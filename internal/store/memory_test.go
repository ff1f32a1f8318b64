package store

import (
	"context"
	"testing"
)

func TestMemoryStoreInsertAndGet(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	doc := Doc{"id": "u1", "username": "alice", "is_online": false}
	if err := s.Insert(ctx, CollectionUsers, doc); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.Get(ctx, CollectionUsers, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["username"] != "alice" {
		t.Errorf("username = %v, want alice", got["username"])
	}

	// The returned document is a copy; mutating it must not leak back.
	got["username"] = "mallory"
	again, err := s.Get(ctx, CollectionUsers, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again["username"] != "alice" {
		t.Errorf("stored document was mutated through a returned copy")
	}
}

func TestMemoryStoreInsertDuplicate(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Insert(ctx, CollectionUsers, Doc{"id": "u1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, CollectionUsers, Doc{"id": "u1"}); err == nil {
		t.Fatal("second insert with the same id succeeded, want error")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), CollectionUsers, "nope"); err != ErrNoDocument {
		t.Errorf("Get missing = %v, want ErrNoDocument", err)
	}
}

func TestMemoryStoreFilters(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	docs := []Doc{
		{"id": "m1", "conversation_id": "c1", "sender_id": "a", "status": "sent"},
		{"id": "m2", "conversation_id": "c1", "sender_id": "b", "status": "sent"},
		{"id": "m3", "conversation_id": "c2", "sender_id": "a", "status": "read"},
	}
	for _, d := range docs {
		if err := s.Insert(ctx, CollectionMessages, d); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"equality", Filter{"conversation_id": "c1"}, 2},
		{"two fields", Filter{"conversation_id": "c1", "sender_id": "a"}, 1},
		{"ne", Filter{"conversation_id": "c1", "sender_id": Ne("a")}, 1},
		{"no match", Filter{"conversation_id": "c9"}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := s.Find(ctx, CollectionMessages, tt.filter, nil)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Find returned %d docs, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMemoryStoreAllOperator(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Insert(ctx, CollectionConversations, Doc{
		"id":           "c1",
		"participants": []string{"a", "b"},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Order of the wanted values must not matter.
	for _, filter := range []Filter{
		{"participants": All("a", "b")},
		{"participants": All("b", "a")},
		{"participants": All("a")},
	} {
		doc, err := s.FindOne(ctx, CollectionConversations, filter)
		if err != nil {
			t.Fatalf("FindOne(%v): %v", filter, err)
		}
		if doc["id"] != "c1" {
			t.Errorf("FindOne(%v) id = %v, want c1", filter, doc["id"])
		}
	}

	if _, err := s.FindOne(ctx, CollectionConversations, Filter{"participants": All("a", "c")}); err != ErrNoDocument {
		t.Errorf("FindOne with absent member = %v, want ErrNoDocument", err)
	}
}

func TestMemoryStoreSortAndLimit(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	// Timestamps are stored in a fixed-width layout so lexicographic order
	// matches chronological order.
	for _, d := range []Doc{
		{"id": "m2", "conversation_id": "c1", "timestamp": "2026-01-02T00:00:00.000000000Z"},
		{"id": "m1", "conversation_id": "c1", "timestamp": "2026-01-01T00:00:00.000000000Z"},
		{"id": "m3", "conversation_id": "c1", "timestamp": "2026-01-03T00:00:00.000000000Z"},
	} {
		if err := s.Insert(ctx, CollectionMessages, d); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := s.Find(ctx, CollectionMessages, Filter{"conversation_id": "c1"}, &FindOptions{
		SortField: "timestamp",
		SortAsc:   true,
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Find returned %d docs, want 2", len(got))
	}
	if got[0]["id"] != "m1" || got[1]["id"] != "m2" {
		t.Errorf("sorted ids = %v, %v; want m1, m2", got[0]["id"], got[1]["id"])
	}
}

func TestMemoryStoreUpdateDottedPath(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Insert(ctx, CollectionConversations, Doc{
		"id":           "c1",
		"unread_count": map[string]any{"a": 3, "b": 0},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := s.Update(ctx, CollectionConversations, "c1", Doc{"unread_count.a": 0}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	doc, err := s.Get(ctx, CollectionConversations, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	counts := doc["unread_count"].(map[string]any)
	if AsInt(counts["a"]) != 0 {
		t.Errorf("unread_count.a = %v, want 0", counts["a"])
	}
	if AsInt(counts["b"]) != 0 {
		t.Errorf("unread_count.b = %v, want 0", counts["b"])
	}
}

func TestMemoryStoreIncrement(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Insert(ctx, CollectionConversations, Doc{
		"id":           "c1",
		"unread_count": map[string]any{"a": 0},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Increment(ctx, CollectionConversations, "c1", "unread_count.a", 1); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	// Incrementing a path that does not exist yet starts from zero.
	if err := s.Increment(ctx, CollectionConversations, "c1", "unread_count.b", 1); err != nil {
		t.Fatalf("Increment new path: %v", err)
	}

	doc, err := s.Get(ctx, CollectionConversations, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	counts := doc["unread_count"].(map[string]any)
	if AsInt(counts["a"]) != 3 {
		t.Errorf("unread_count.a = %v, want 3", counts["a"])
	}
	if AsInt(counts["b"]) != 1 {
		t.Errorf("unread_count.b = %v, want 1", counts["b"])
	}

	if err := s.Increment(ctx, CollectionConversations, "missing", "unread_count.a", 1); err != ErrNoDocument {
		t.Errorf("Increment on missing doc = %v, want ErrNoDocument", err)
	}
}

func TestMemoryStoreUpdateMany(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	for _, d := range []Doc{
		{"id": "m1", "conversation_id": "c1", "sender_id": "a", "status": "sent"},
		{"id": "m2", "conversation_id": "c1", "sender_id": "b", "status": "sent"},
		{"id": "m3", "conversation_id": "c2", "sender_id": "a", "status": "sent"},
	} {
		if err := s.Insert(ctx, CollectionMessages, d); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	updated, err := s.UpdateMany(ctx, CollectionMessages,
		Filter{"conversation_id": "c1", "sender_id": Ne("b")},
		Doc{"status": "read"})
	if err != nil {
		t.Fatalf("UpdateMany: %v", err)
	}
	if updated != 1 {
		t.Errorf("UpdateMany updated %d docs, want 1", updated)
	}

	doc, _ := s.Get(ctx, CollectionMessages, "m1")
	if doc["status"] != "read" {
		t.Errorf("m1 status = %v, want read", doc["status"])
	}
	doc, _ = s.Get(ctx, CollectionMessages, "m3")
	if doc["status"] != "sent" {
		t.Errorf("m3 status = %v, want sent (different conversation)", doc["status"])
	}
}
