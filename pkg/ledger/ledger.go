package ledger

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultCapacity is the number of records kept by default.
const DefaultCapacity = 1000

// Ledger appends records to a Store and keeps it trimmed to capacity.
type Ledger struct {
	store    Store
	capacity int
	logger   *slog.Logger
}

// New creates a ledger over store. A non-positive capacity falls back to
// DefaultCapacity.
func New(store Store, capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{
		store:    store,
		capacity: capacity,
		logger:   slog.Default().With("component", "ledger"),
	}
}

// Record appends rec and trims the store to the ledger capacity.
func (l *Ledger) Record(ctx context.Context, rec Record) error {
	if err := l.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("failed to append usage record: %w", err)
	}
	if err := l.store.Trim(ctx, l.capacity); err != nil {
		// The record is already stored; an untrimmed log only costs scan time.
		l.logger.Warn("failed to trim usage log", "capacity", l.capacity, "error", err)
	}
	return nil
}

// Records returns every stored record, oldest first.
func (l *Ledger) Records(ctx context.Context) ([]Record, error) {
	records, err := l.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage log: %w", err)
	}
	return records, nil
}

// Capacity returns the maximum number of records kept.
func (l *Ledger) Capacity() int {
	return l.capacity
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}
