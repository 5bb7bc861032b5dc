package domain

import (
	"context"
	"time"
)

// Checkpoint stores replay positions so a restarted publisher resumes
// where it stopped instead of re-sending a whole day file.
type Checkpoint interface {
	// Get retrieves a stored value, nil when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL. Zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Health check.
	Ping(ctx context.Context) error

	// Lifecycle.
	Close() error
}

// CheckpointConfig holds configuration for checkpoint store initialization.
type CheckpointConfig struct {
	// Type is the store type: "memory" or "redis".
	Type string

	// Redis settings.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL applied to checkpoint entries. Zero keeps them until deleted.
	TTL time.Duration
}
