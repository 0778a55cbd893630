package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/mjelle/shotgroup/internal/domain/model"
	"github.com/mjelle/shotgroup/pkg/metrics"
)

// MemStore is the in-memory Store implementation. A single mutex serializes
// appends and deletes against queries, which gives the read-your-writes
// guarantee directly.
type MemStore struct {
	mu sync.RWMutex

	// patterns is kept sorted by timestamp descending so queries read
	// most-recent-first without re-sorting.
	patterns []model.StoredTargetPattern
	byID     map[string]struct{}

	initialCapacity int
}

// NewMemStore creates an empty in-memory history store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		initialCapacity: defaultInitialCapacity,
		byID:            make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.patterns = make([]model.StoredTargetPattern, 0, s.initialCapacity)
	return s
}

// Append inserts a pattern at its timestamp position.
func (s *MemStore) Append(_ context.Context, pattern model.StoredTargetPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[pattern.ID]; ok {
		return ErrDuplicateID
	}

	// Find the insertion point that keeps timestamp-descending order.
	idx := sort.Search(len(s.patterns), func(i int) bool {
		return s.patterns[i].Timestamp.Before(pattern.Timestamp)
	})
	s.patterns = append(s.patterns, model.StoredTargetPattern{})
	copy(s.patterns[idx+1:], s.patterns[idx:])
	s.patterns[idx] = pattern
	s.byID[pattern.ID] = struct{}{}

	metrics.UpdateHistorySize(len(s.patterns))
	return nil
}

// Query returns the filtered view, most recent first.
func (s *MemStore) Query(_ context.Context, filter model.DateFilter, sessions []model.SessionType) ([]model.StoredTargetPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := sessionNameSet(sessions)
	cutoff, bounded := filter.Cutoff(nowFunc())

	out := make([]model.StoredTargetPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		if names != nil && !names[p.Session.Name] {
			continue
		}
		if bounded && p.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, p)
		if filter == model.FilterLastTarget {
			break
		}
	}
	return out, nil
}

// Delete removes one pattern by id; absent ids are a no-op.
func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return nil
	}
	for i, p := range s.patterns {
		if p.ID == id {
			s.patterns = append(s.patterns[:i], s.patterns[i+1:]...)
			break
		}
	}
	delete(s.byID, id)

	metrics.UpdateHistorySize(len(s.patterns))
	return nil
}

// Count returns the number of stored patterns.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns)
}
