// Package liststate keeps a client side copy of a list endpoint: items,
// loading flag, last error and current filter. Mutations are optimistic:
// the local list changes first, the remote call follows and a failure
// reverts only that mutation.
package liststate

import (
	"context"
	"sync"
)

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is a pushed change, typically from the realtime channel. For
// deletes only ID is required.
type Event[T any] struct {
	Type EventType
	ID   string
	Item T
}

type Snapshot[T any, F any] struct {
	Items   []T
	Loading bool
	Err     error
	Filter  F
}

type Fetcher[T any, F any] func(ctx context.Context, filter F) ([]T, error)

// entry carries tag while it is an unsaved Add and rev while an Update
// for it is in flight.
type entry[T any] struct {
	item T
	tag  uint64
	rev  uint64
}

type Store[T any, F any] struct {
	key   func(T) string
	fetch Fetcher[T, F]

	mu      sync.Mutex
	entries []entry[T]
	loading bool
	err     error
	filter  F
	gen     uint64
	nextTag uint64

	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[int]func(Snapshot[T, F])
	nextSub  int
}

// New creates a store. key returns the identity of an item; fetch loads
// the list for a filter.
func New[T any, F any](key func(T) string, fetch Fetcher[T, F], filter F) *Store[T, F] {
	return &Store[T, F]{
		key:    key,
		fetch:  fetch,
		filter: filter,
		subs:   make(map[int]func(Snapshot[T, F])),
	}
}

// Subscribe registers fn for snapshots after every change and returns a
// func that removes it. fn runs synchronously and must not call back into
// the store.
func (s *Store[T, F]) Subscribe(fn func(Snapshot[T, F])) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()
	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store[T, F]) Snapshot() Snapshot[T, F] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store[T, F]) snapshotLocked() Snapshot[T, F] {
	items := make([]T, len(s.entries))
	for i, e := range s.entries {
		items[i] = e.item
	}
	return Snapshot[T, F]{Items: items, Loading: s.loading, Err: s.err, Filter: s.filter}
}

// mutate applies fn under the lock and notifies subscribers with the
// resulting snapshot.
func (s *Store[T, F]) mutate(fn func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subsMu.Lock()
	subs := make([]func(Snapshot[T, F]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// Load fetches the list for the current filter. When loads overlap only
// the most recent one is applied.
func (s *Store[T, F]) Load(ctx context.Context) error {
	var (
		gen    uint64
		filter F
	)
	s.mutate(func() {
		s.gen++
		gen = s.gen
		filter = s.filter
		s.loading = true
	})

	items, err := s.fetch(ctx, filter)

	s.mutate(func() {
		if gen != s.gen {
			return
		}
		s.loading = false
		s.err = err
		if err != nil {
			return
		}
		s.entries = make([]entry[T], len(items))
		for i, it := range items {
			s.entries[i] = entry[T]{item: it}
		}
	})
	return err
}

// ChangeFilter replaces the filter and reloads.
func (s *Store[T, F]) ChangeFilter(ctx context.Context, filter F) error {
	s.mutate(func() { s.filter = filter })
	return s.Load(ctx)
}

// Add prepends item, calls remote and swaps in the server's version. On
// failure only the optimistic entry is dropped.
func (s *Store[T, F]) Add(ctx context.Context, item T, remote func(ctx context.Context, item T) (T, error)) (T, error) {
	var tag uint64
	s.mutate(func() {
		tag = s.newTagLocked()
		s.entries = append([]entry[T]{{item: item, tag: tag}}, s.entries...)
	})

	saved, err := remote(ctx, item)
	s.mutate(func() {
		s.err = err
		i := s.tagIndexLocked(tag)
		if i < 0 {
			// a reload replaced the list while the call was in flight
			return
		}
		if err != nil || s.indexLocked(s.key(saved)) >= 0 {
			// failed, or a realtime event already delivered the saved item
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return
		}
		s.entries[i] = entry[T]{item: saved}
	})
	return saved, err
}

// Update replaces the item with the same key, calls remote and swaps in
// the server's version. On failure the prior item is put back unless
// something else replaced the optimistic one in the meantime.
func (s *Store[T, F]) Update(ctx context.Context, item T, remote func(ctx context.Context, item T) (T, error)) (T, error) {
	id := s.key(item)
	var (
		prior entry[T]
		rev   uint64
	)
	s.mutate(func() {
		if i := s.indexLocked(id); i >= 0 {
			prior = s.entries[i]
			rev = s.newTagLocked()
			s.entries[i] = entry[T]{item: item, rev: rev}
		}
	})

	saved, err := remote(ctx, item)
	s.mutate(func() {
		s.err = err
		i := s.indexLocked(id)
		if rev == 0 || i < 0 || s.entries[i].rev != rev {
			return
		}
		if err != nil {
			s.entries[i] = prior
			return
		}
		s.entries[i] = entry[T]{item: saved}
	})
	return saved, err
}

// Delete removes the item with id, then calls remote. On failure the item
// is put back at its old position unless it reappeared meanwhile.
func (s *Store[T, F]) Delete(ctx context.Context, id string, remote func(ctx context.Context, id string) error) error {
	var (
		removed entry[T]
		at      = -1
	)
	s.mutate(func() {
		if i := s.indexLocked(id); i >= 0 {
			removed, at = s.entries[i], i
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		}
	})

	err := remote(ctx, id)
	s.mutate(func() {
		s.err = err
		if err == nil || at < 0 || s.indexLocked(id) >= 0 {
			return
		}
		removed.rev = 0
		at = min(at, len(s.entries))
		s.entries = append(s.entries[:at:at], append([]entry[T]{removed}, s.entries[at:]...)...)
	})
	return err
}

// Apply patches the list from a pushed event without a round trip.
func (s *Store[T, F]) Apply(ev Event[T]) {
	s.mutate(func() {
		id := ev.ID
		if id == "" && ev.Type != EventDelete {
			id = s.key(ev.Item)
		}
		i := s.indexLocked(id)
		switch ev.Type {
		case EventDelete:
			if i >= 0 {
				s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			}
		default:
			if i >= 0 {
				s.entries[i] = entry[T]{item: ev.Item}
				return
			}
			s.entries = append([]entry[T]{{item: ev.Item}}, s.entries...)
		}
	})
}

func (s *Store[T, F]) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.tag == 0 && s.key(e.item) == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, F]) tagIndexLocked(tag uint64) int {
	for i, e := range s.entries {
		if e.tag == tag {
			return i
		}
	}
	return -1
}

func (s *Store[T, F]) newTagLocked() uint64 {
	s.nextTag++
	return s.nextTag
}
