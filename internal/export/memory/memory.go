// Package memory is an in-memory MortgageWriter used in tests and when the
// Google Sheets backup is not configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"mortgages/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Mortgage
}

func New() *Store {
	return &Store{}
}

// Append stores the mortgage and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, m core.Mortgage) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, m)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Items returns a copy of everything appended so far.
func (s *Store) Items() []core.Mortgage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Mortgage(nil), s.items...)
}
