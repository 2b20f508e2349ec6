package ledger

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process slice.
// All data is lost when the process exits.
type MemoryStore struct {
	records []Record
	closed  bool
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a record at the end of the log.
func (m *MemoryStore) Append(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.records = append(m.records, rec)
	return nil
}

// Read returns a copy of all records, oldest first.
func (m *MemoryStore) Read(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

// Trim drops the oldest records so that at most keep remain.
func (m *MemoryStore) Trim(ctx context.Context, keep int) error {
	if keep <= 0 {
		return ErrInvalidCapacity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if excess := len(m.records) - keep; excess > 0 {
		// Copy into a fresh slice so the dropped prefix can be collected.
		kept := make([]Record, keep)
		copy(kept, m.records[excess:])
		m.records = kept
	}
	return nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close marks the store closed. Close is idempotent.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}
