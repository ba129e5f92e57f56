package docstore

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
)

type SafeMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func NewSafeMap[K comparable, V any]() *SafeMap[K, V] {
	return &SafeMap[K, V]{m: make(map[K]V)}
}

func (s *SafeMap[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *SafeMap[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Update runs fn with the current value under the write lock and stores
// the result. Returning false from fn deletes the key.
func (s *SafeMap[K, V]) Update(key K, fn func(v V, ok bool) (V, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[key]
	next, keep := fn(cur, ok)
	if keep {
		s.m[key] = next
	} else {
		delete(s.m, key)
	}
}

type docKey struct {
	collection string
	key        string
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	docs *SafeMap[docKey, map[string]json.RawMessage]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: NewSafeMap[docKey, map[string]json.RawMessage]()}
}

func (s *MemoryStore) Get(ctx context.Context, collection, key string) (map[string]json.RawMessage, error) {
	doc, ok := s.docs.Get(docKey{collection, key})
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(doc), nil
}

// Stored maps are replaced on write, never mutated, so reads need no copy.
func (s *MemoryStore) GetField(ctx context.Context, collection, key, field string, dst any) error {
	doc, _ := s.docs.Get(docKey{collection, key})
	raw, found := doc[field]
	if !found {
		return ErrNotFound
	}
	return json.Unmarshal(raw, dst)
}

func (s *MemoryStore) SetField(ctx context.Context, collection, key, field string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.docs.Update(docKey{collection, key}, func(doc map[string]json.RawMessage, ok bool) (map[string]json.RawMessage, bool) {
		next := maps.Clone(doc)
		if next == nil {
			next = map[string]json.RawMessage{}
		}
		next[field] = b
		return next, true
	})
	return nil
}

func (s *MemoryStore) DeleteField(ctx context.Context, collection, key, field string) error {
	s.docs.Update(docKey{collection, key}, func(doc map[string]json.RawMessage, ok bool) (map[string]json.RawMessage, bool) {
		if !ok {
			return nil, false
		}
		next := maps.Clone(doc)
		delete(next, field)
		return next, len(next) > 0
	})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	s.docs.Delete(docKey{collection, key})
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }
