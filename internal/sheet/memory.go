// Package sheet provides the tabular stores that hold the register rows.
// Every backend returns the header row first from Rows.
package sheet

import (
	"context"
	"sync"
)

// Memory keeps rows in process memory. Used for local runs and tests.
type Memory struct {
	mu   sync.RWMutex
	rows [][]string
}

// NewMemory returns a table seeded with rows (typically just the header).
func NewMemory(rows ...[]string) *Memory {
	m := &Memory{}
	for _, r := range rows {
		m.rows = append(m.rows, clone(r))
	}
	return m
}

func (m *Memory) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = clone(r)
	}
	return out, nil
}

func (m *Memory) AppendRow(ctx context.Context, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, clone(row))
	return nil
}

// Len returns the number of rows including the header.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

func clone(r []string) []string {
	out := make([]string, len(r))
	copy(out, r)
	return out
}
