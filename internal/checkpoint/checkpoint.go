// Package checkpoint provides replay position stores for Kite.
package checkpoint

import (
	"fmt"

	"github.com/opensource-finance/kite/internal/domain"
)

// New creates a new checkpoint store based on configuration.
// "memory" keeps positions for the process lifetime; "redis" survives
// publisher restarts.
func New(cfg domain.CheckpointConfig) (domain.Checkpoint, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil

	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported checkpoint type: %s", cfg.Type)
	}
}
