package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	vectors map[string]vector.Collection
	totals  map[string]totals.Totals
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		vectors: make(map[string]vector.Collection),
		totals:  make(map[string]totals.Totals),
	}
}

// ReadVectors returns a copy of the named collection.
func (s *Store) ReadVectors(ctx context.Context, name string) (vector.Collection, report.Counts, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.vectors[name]
	if !ok {
		return nil, nil, fmt.Errorf("vectors %s: %w", name, internalerr.ErrResource)
	}
	return copyCollection(c), report.Counts{}, nil
}

// WriteVectors stores a copy of c, leaving out entries with no features.
func (s *Store) WriteVectors(ctx context.Context, name string, c vector.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := make(vector.Collection, len(c))
	for entry, v := range c {
		if len(v) > 0 {
			out[entry] = v.Clone()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[name] = out
	return nil
}

// ReadTotals returns a copy of the named totals.
func (s *Store) ReadTotals(ctx context.Context, name string) (totals.Totals, report.Counts, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.totals[name]
	if !ok {
		return nil, nil, fmt.Errorf("totals %s: %w", name, internalerr.ErrResource)
	}
	return copyTotals(t), report.Counts{}, nil
}

// WriteTotals stores a copy of t.
func (s *Store) WriteTotals(ctx context.Context, name string, t totals.Totals) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[name] = copyTotals(t)
	return nil
}

// Names lists every stored vector and totals name in ascending order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.vectors)+len(s.totals))
	for n := range s.vectors {
		names = append(names, n)
	}
	for n := range s.totals {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func copyCollection(c vector.Collection) vector.Collection {
	out := make(vector.Collection, len(c))
	for entry, v := range c {
		out[entry] = v.Clone()
	}
	return out
}

func copyTotals(t totals.Totals) totals.Totals {
	out := make(totals.Totals, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
