package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list key used when none is configured.
const DefaultRedisKey = "sentinel:usage"

// RedisStore implements Store on a Redis list. Records are JSON encoded
// and pushed on the right; trimming keeps the rightmost entries.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	// Key is the Redis list key.
	// Default: sentinel:usage
	Key string
}

// NewRedisStore creates a store over an existing client. The store does not
// own the client unless Close is called.
func NewRedisStore(client *redis.Client, cfg RedisStoreConfig) *RedisStore {
	if cfg.Key == "" {
		cfg.Key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: cfg.Key}
}

// Append adds a record at the end of the list.
func (r *RedisStore) Append(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := r.client.RPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// Read returns all records, oldest first.
func (r *RedisStore) Read(ctx context.Context) ([]Record, error) {
	values, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	records := make([]Record, 0, len(values))
	for i, v := range values {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Trim keeps the most recent keep records.
func (r *RedisStore) Trim(ctx context.Context, keep int) error {
	if keep <= 0 {
		return ErrInvalidCapacity
	}
	if err := r.client.LTrim(ctx, r.key, int64(-keep), -1).Err(); err != nil {
		return fmt.Errorf("failed to trim records: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
