package domain

import (
	"context"
	"time"
)

// Run records the parameters of one generation run in the archive.
type Run struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	StartDate time.Time `json:"startDate"`
	Days      int       `json:"days"`
	Customers int       `json:"customers"`
	Terminals int       `json:"terminals"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository is the optional archive sink: it persists run metadata and
// generated transactions to a database so runs can be queried with SQL
// instead of re-parsing the day files.
type Repository interface {
	// SaveRun records a run's parameters.
	SaveRun(ctx context.Context, run *Run) error

	// SaveDay inserts one day's transactions inside a single database
	// transaction, so a failed day archives nothing.
	SaveDay(ctx context.Context, runID string, day int, txs []*Transaction) error

	// GetTransaction retrieves one archived transaction.
	GetTransaction(ctx context.Context, runID string, txID string) (*Transaction, error)

	// CountByDay returns the archived row count for one day of a run.
	CountByDay(ctx context.Context, runID string, day int) (int64, error)

	// Health check.
	Ping(ctx context.Context) error

	// Lifecycle.
	Close() error
}

// RepositoryConfig holds configuration for archive initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "none", "sqlite" or "postgres".
	Driver string

	// SQLite specific.
	SQLitePath string

	// PostgreSQL specific.
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
