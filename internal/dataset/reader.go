package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/opensource-finance/kite/internal/domain"
)

// ReadDay parses one day file back into transactions. The header must
// match Columns exactly; schema drift here would break every consumer
// downstream of the replay publisher.
func ReadDay(path string) ([]*domain.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open day file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	txs := make([]*domain.Transaction, 0, len(records))
	for i, rec := range records {
		tx, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func checkHeader(header []string) error {
	if len(header) != len(Columns) {
		return fmt.Errorf("expected %d columns, got %d", len(Columns), len(header))
	}
	for i, col := range Columns {
		if header[i] != col {
			return fmt.Errorf("column %d is %q, want %q", i, header[i], col)
		}
	}
	return nil
}

func parseRecord(rec []string) (*domain.Transaction, error) {
	dt, err := time.Parse(datetimeLayout, rec[1])
	if err != nil {
		return nil, fmt.Errorf("bad TX_DATETIME %q: %w", rec[1], err)
	}
	sec, err := strconv.Atoi(rec[2])
	if err != nil {
		return nil, fmt.Errorf("bad TX_TIME_SECONDS %q: %w", rec[2], err)
	}
	day, err := strconv.Atoi(rec[3])
	if err != nil {
		return nil, fmt.Errorf("bad TX_TIME_DAYS %q: %w", rec[3], err)
	}
	amount, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return nil, fmt.Errorf("bad TX_AMOUNT %q: %w", rec[6], err)
	}

	coords := make([]float64, 4)
	for i, idx := range []int{9, 10, 11, 12} {
		v, err := strconv.ParseFloat(rec[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("bad %s %q: %w", Columns[idx], rec[idx], err)
		}
		coords[i] = v
	}

	return &domain.Transaction{
		ID:            rec[0],
		DateTime:      dt,
		TimeSeconds:   sec,
		TimeDays:      day,
		CustomerID:    rec[4],
		TerminalID:    rec[5],
		Amount:        amount,
		Fraud:         rec[7] == "1",
		FraudScenario: rec[8],
		CustomerLat:   coords[0],
		CustomerLon:   coords[1],
		TerminalLat:   coords[2],
		TerminalLon:   coords[3],
	}, nil
}
