package repository

// Schema definitions for the Kite archive.
// Compatible with both SQLite and PostgreSQL.

const schemaRuns = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    seed BIGINT NOT NULL,
    start_date TIMESTAMP NOT NULL,
    days INTEGER NOT NULL,
    customers INTEGER NOT NULL,
    terminals INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT NOT NULL,
    run_id TEXT NOT NULL,
    tx_datetime TIMESTAMP NOT NULL,
    time_seconds INTEGER NOT NULL,
    time_days INTEGER NOT NULL,
    customer_id TEXT NOT NULL,
    terminal_id TEXT NOT NULL,
    amount REAL NOT NULL,
    fraud INTEGER NOT NULL,
    fraud_scenario TEXT,
    customer_lat REAL NOT NULL,
    customer_lon REAL NOT NULL,
    terminal_lat REAL NOT NULL,
    terminal_lon REAL NOT NULL,
    PRIMARY KEY (run_id, id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_day ON transactions(run_id, time_days);
CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions(run_id, customer_id);
CREATE INDEX IF NOT EXISTS idx_transactions_fraud ON transactions(run_id, fraud);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaRuns,
		schemaTransactions,
	}
}
