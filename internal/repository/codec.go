package repository

import (
	"time"

	"github.com/google/uuid"

	"direct_messenger/internal/store"
)

// Timestamps are stored as fixed-width UTC strings so that lexicographic
// order in the store equals chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTimePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	t := decodeTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

func decodeString(v any) string {
	s, _ := v.(string)
	return s
}

func decodeStringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func encodeStringPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func decodeBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func decodeUUID(v any) uuid.UUID {
	s, ok := v.(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func decodeUUIDPtr(v any) *uuid.UUID {
	id := decodeUUID(v)
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func decodeStringSlice(v any) []string {
	switch values := v.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func decodeIntMap(v any) map[string]int {
	out := make(map[string]int)
	switch m := v.(type) {
	case map[string]any:
		for k, item := range m {
			out[k] = store.AsInt(item)
		}
	case store.Doc:
		for k, item := range m {
			out[k] = store.AsInt(item)
		}
	}
	return out
}
