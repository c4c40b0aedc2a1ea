// Package memory is an in-process spend exporter for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "spendwise/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []ports.SpendRow
	// Err, when set, is returned by Append instead of storing the row.
	Err error
}

var _ ports.SpendWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row ports.SpendRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []ports.SpendRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.SpendRow(nil), s.rows...)
}
