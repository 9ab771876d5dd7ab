// Package memory is an in-process stand-in for the spreadsheet export, used
// by tests and local development without Google credentials.
package memory

import (
	"context"
	"sync"

	"kharacha/internal/core"
	ports "kharacha/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	rows  map[string]core.Expense
	order []string
}

var _ ports.ExpenseExporter = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[string]core.Expense)}
}

func (s *Store) Upsert(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.rows[e.ID] = e
	return nil
}

func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return nil
	}
	delete(s.rows, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns the exported records in insertion order.
func (s *Store) Rows() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}
