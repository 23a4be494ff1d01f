package listing

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is a Store that lives for the process. It backs the "memory"
// store driver and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	listings map[int64]*Listing
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{listings: make(map[int64]*Listing)}
}

// Get returns a copy of the listing.
func (s *MemoryStore) Get(_ context.Context, id int64) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *l
	out.Meta = maps.Clone(l.Meta)
	return &out, nil
}

// Upsert stores l, merging its meta into any existing entries.
func (s *MemoryStore) Upsert(_ context.Context, l *Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.listings[l.ID]
	if !ok {
		cur = &Listing{ID: l.ID, Meta: map[string]string{}}
		s.listings[l.ID] = cur
	}
	cur.PostType = l.PostType
	cur.Title = l.Title
	maps.Copy(cur.Meta, l.Meta)
	return nil
}

// SetMeta writes values for an existing listing.
func (s *MemoryStore) SetMeta(_ context.Context, id int64, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return ErrNotFound
	}
	maps.Copy(l.Meta, values)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
