package ledger

import (
	"context"
	"errors"
)

// Store persists usage records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Append adds a record at the end of the log.
	Append(ctx context.Context, rec Record) error

	// Read returns all stored records, oldest first.
	Read(ctx context.Context) ([]Record, error)

	// Trim drops the oldest records so that at most keep remain.
	Trim(ctx context.Context, keep int) error

	// Close releases any resources held by the store.
	Close() error
}

var (
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("ledger store closed")

	// ErrInvalidCapacity is returned when a non-positive capacity is used.
	ErrInvalidCapacity = errors.New("ledger capacity must be positive")
)
