package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// MemoryStore keeps graphs in a process-local map.
// Snapshots are deep-copied on the way in and out.
type MemoryStore struct {
	mu     sync.RWMutex
	graphs map[string]roomgraph.Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{graphs: make(map[string]roomgraph.Snapshot)}
}

func (s *MemoryStore) Load(ctx context.Context, name string) (roomgraph.Snapshot, error) {
	if err := checkName(name); err != nil {
		return roomgraph.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.graphs[name]
	if !ok {
		return roomgraph.Snapshot{}, notFound(name)
	}
	return cloneSnapshot(snap), nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, snap roomgraph.Snapshot) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[name] = cloneSnapshot(snap)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[name]; !ok {
		return notFound(name)
	}
	delete(s.graphs, name)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.graphs))
	for name := range s.graphs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
