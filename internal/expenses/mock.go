package expenses

import (
	"context"
	"sync"
)

// MockRepository keeps inserted expenses in memory.
type MockRepository struct {
	// FailOn, when set, returns an error for the matching expense.
	FailOn func(e Expense) error

	mu       sync.Mutex
	inserted []Expense
}

// Insert implements Repository.
func (m *MockRepository) Insert(_ context.Context, e Expense) error {
	if m.FailOn != nil {
		if err := m.FailOn(e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, e)
	return nil
}

// Inserted returns the stored expenses in insertion order.
func (m *MockRepository) Inserted() []Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Expense(nil), m.inserted...)
}
