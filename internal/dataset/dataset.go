// Package dataset reads and writes the daily transaction files.
package dataset

import (
	"strconv"
	"time"

	"github.com/opensource-finance/kite/internal/domain"
)

// Columns is the fixed day-file schema. Downstream consumers depend on
// this exact order; empty days still carry the full header.
var Columns = []string{
	"TRANSACTION_ID",
	"TX_DATETIME",
	"TX_TIME_SECONDS",
	"TX_TIME_DAYS",
	"CUSTOMER_ID",
	"TERMINAL_ID",
	"TX_AMOUNT",
	"TX_FRAUD",
	"TX_FRAUD_SCENARIO",
	"CUSTOMER_LAT",
	"CUSTOMER_LON",
	"TERMINAL_LAT",
	"TERMINAL_LON",
}

// datetimeLayout is the TX_DATETIME format.
const datetimeLayout = "2006-01-02T15:04:05"

// DayFileName returns the file name for one simulated day's dataset.
func DayFileName(date time.Time) string {
	return "transactions_" + date.Format("20060102") + ".csv"
}

// record formats one transaction as a CSV row in column order.
// TX_AMOUNT always carries exactly 2 decimals; coordinates use the
// shortest round-trip float form.
func record(tx *domain.Transaction) []string {
	fraud := "0"
	if tx.Fraud {
		fraud = "1"
	}
	return []string{
		tx.ID,
		tx.DateTime.Format(datetimeLayout),
		strconv.Itoa(tx.TimeSeconds),
		strconv.Itoa(tx.TimeDays),
		tx.CustomerID,
		tx.TerminalID,
		strconv.FormatFloat(tx.Amount, 'f', 2, 64),
		fraud,
		tx.FraudScenario,
		strconv.FormatFloat(tx.CustomerLat, 'f', -1, 64),
		strconv.FormatFloat(tx.CustomerLon, 'f', -1, 64),
		strconv.FormatFloat(tx.TerminalLat, 'f', -1, 64),
		strconv.FormatFloat(tx.TerminalLon, 'f', -1, 64),
	}
}
