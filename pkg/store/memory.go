package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
)

// MemoryStore keeps sweeps in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	sweeps map[string]*pipeline.SweepResult
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sweeps: make(map[string]*pipeline.SweepResult)}
}

// SaveSweep stores a copy of res.
func (s *MemoryStore) SaveSweep(ctx context.Context, res *pipeline.SweepResult) error {
	if res.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "sweep has no ID")
	}
	cp := *res
	s.mu.Lock()
	s.sweeps[res.ID] = &cp
	s.mu.Unlock()
	return nil
}

// GetSweep returns a copy of the stored sweep.
func (s *MemoryStore) GetSweep(ctx context.Context, id string) (*pipeline.SweepResult, error) {
	s.mu.RLock()
	res, ok := s.sweeps[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "sweep %s not found", id)
	}
	cp := *res
	return &cp, nil
}

// ListSweeps returns the most recent sweeps first.
func (s *MemoryStore) ListSweeps(ctx context.Context, states, limit int) ([]*pipeline.SweepResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	out := make([]*pipeline.SweepResult, 0, len(s.sweeps))
	for _, res := range s.sweeps {
		if states > 0 && res.States != states {
			continue
		}
		cp := *res
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *pipeline.SweepResult) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
