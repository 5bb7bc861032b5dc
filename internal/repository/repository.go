// Package repository provides the optional archive sink: run metadata
// and generated transactions persisted to SQLite or PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opensource-finance/kite/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new archive based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun records a run's parameters.
func (r *SQLRepository) SaveRun(ctx context.Context, run *domain.Run) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("%w: run with id is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO runs (id, seed, start_date, days, customers, terminals, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		run.ID, run.Seed, run.StartDate,
		run.Days, run.Customers, run.Terminals,
		run.CreatedAt,
	)
	return err
}

// SaveDay inserts one day's transactions inside a single database
// transaction: a failure partway archives nothing for that day.
func (r *SQLRepository) SaveDay(ctx context.Context, runID string, day int, txs []*domain.Transaction) error {
	if runID == "" {
		return fmt.Errorf("%w: runID is required", ErrInvalidInput)
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin day insert: %w", err)
	}

	query := r.rebind(`
		INSERT INTO transactions (
			id, run_id, tx_datetime, time_seconds, time_days,
			customer_id, terminal_id, amount, fraud, fraud_scenario,
			customer_lat, customer_lon, terminal_lat, terminal_lon
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	stmt, err := dbTx.PrepareContext(ctx, query)
	if err != nil {
		dbTx.Rollback()
		return fmt.Errorf("failed to prepare day insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		fraud := 0
		if tx.Fraud {
			fraud = 1
		}
		if _, err := stmt.ExecContext(ctx,
			tx.ID, runID, tx.DateTime, tx.TimeSeconds, tx.TimeDays,
			tx.CustomerID, tx.TerminalID, tx.Amount, fraud, tx.FraudScenario,
			tx.CustomerLat, tx.CustomerLon, tx.TerminalLat, tx.TerminalLon,
		); err != nil {
			dbTx.Rollback()
			return fmt.Errorf("failed to insert %s for day %d: %w", tx.ID, day, err)
		}
	}

	return dbTx.Commit()
}

// GetTransaction retrieves one archived transaction.
func (r *SQLRepository) GetTransaction(ctx context.Context, runID string, txID string) (*domain.Transaction, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: runID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tx_datetime, time_seconds, time_days,
			   customer_id, terminal_id, amount, fraud, fraud_scenario,
			   customer_lat, customer_lon, terminal_lat, terminal_lon
		FROM transactions
		WHERE run_id = ? AND id = ?
	`

	var tx domain.Transaction
	var fraud int
	var scenario sql.NullString

	err := r.db.QueryRowContext(ctx, r.rebind(query), runID, txID).Scan(
		&tx.ID, &tx.DateTime, &tx.TimeSeconds, &tx.TimeDays,
		&tx.CustomerID, &tx.TerminalID, &tx.Amount, &fraud, &scenario,
		&tx.CustomerLat, &tx.CustomerLon, &tx.TerminalLat, &tx.TerminalLon,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tx.Fraud = fraud == 1
	tx.FraudScenario = scenario.String

	return &tx, nil
}

// CountByDay returns the archived row count for one day of a run.
func (r *SQLRepository) CountByDay(ctx context.Context, runID string, day int) (int64, error) {
	if runID == "" {
		return 0, fmt.Errorf("%w: runID is required", ErrInvalidInput)
	}

	query := `SELECT COUNT(*) FROM transactions WHERE run_id = ? AND time_days = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, r.rebind(query), runID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count day %d: %w", day, err)
	}
	return count, nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
