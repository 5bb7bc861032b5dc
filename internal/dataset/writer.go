package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opensource-finance/kite/internal/domain"
)

// Writer writes one CSV file per simulated day into a directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// WriteDay writes a full day's transactions and returns the final path.
// The file is written under a temporary name and renamed into place, so
// a failure partway through never leaves a partial day file. Days with
// zero transactions still get a header-only file.
func (w *Writer) WriteDay(date time.Time, txs []*domain.Transaction) (string, error) {
	final := filepath.Join(w.dir, DayFileName(date))
	tmp := final + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create day file: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(Columns); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write(record(tx)); err != nil {
			f.Close()
			os.Remove(tmp)
			return "", fmt.Errorf("failed to write row %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to flush day file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to close day file: %w", err)
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize day file: %w", err)
	}
	return final, nil
}
