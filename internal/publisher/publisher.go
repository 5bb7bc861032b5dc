// Package publisher replays generated day files onto an event bus,
// feeding downstream scoring pipelines at a controlled pace.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/opensource-finance/kite/internal/dataset"
	"github.com/opensource-finance/kite/internal/domain"
)

var tracer = otel.Tracer("kite-publisher")

// messageKey keys bus messages by customer so a partitioned transport
// keeps per-customer ordering.
type messageKey struct {
	CustomerID string `json:"CUSTOMER_ID"`
}

// messageValue is the row payload consumers receive.
type messageValue struct {
	TransactionID string  `json:"TRANSACTION_ID"`
	TxDatetime    string  `json:"TX_DATETIME"`
	CustomerID    string  `json:"CUSTOMER_ID"`
	TerminalID    string  `json:"TERMINAL_ID"`
	TxAmount      float64 `json:"TX_AMOUNT"`
	TxFraud       int     `json:"TX_FRAUD"`
	CustomerLat   float64 `json:"CUSTOMER_LAT"`
	CustomerLon   float64 `json:"CUSTOMER_LON"`
	TerminalLat   float64 `json:"TERMINAL_LAT"`
	TerminalLon   float64 `json:"TERMINAL_LON"`
}

// Progress is a snapshot of the current replay, served by the status API.
type Progress struct {
	File      string `json:"file"`
	Published int    `json:"published"`
	Total     int    `json:"total"`
	Done      bool   `json:"done"`
}

// Publisher streams one day file onto the bus row by row.
type Publisher struct {
	Bus   domain.EventBus
	Store domain.Checkpoint // optional; enables resume across restarts

	// Topic defaults to domain.TopicTransactionsRaw.
	Topic string

	// Interval is the pacing delay between rows. Zero publishes as
	// fast as the transport accepts.
	Interval time.Duration

	// CheckpointEvery is how many rows pass between checkpoint writes.
	CheckpointEvery int

	// CheckpointTTL bounds how long a stale position survives.
	CheckpointTTL time.Duration

	mu       sync.Mutex
	progress Progress
}

const defaultCheckpointEvery = 100

// Progress returns a snapshot of the current replay.
func (p *Publisher) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

func (p *Publisher) setProgress(file string, published, total int, done bool) {
	p.mu.Lock()
	p.progress = Progress{File: file, Published: published, Total: total, Done: done}
	p.mu.Unlock()
}

// Replay publishes every row of one day file, resuming from a stored
// checkpoint when one exists. The checkpoint is cleared on completion.
func (p *Publisher) Replay(ctx context.Context, path string) error {
	if p.Bus == nil {
		return fmt.Errorf("%w: event bus is required", domain.ErrConfiguration)
	}

	topic := p.Topic
	if topic == "" {
		topic = domain.TopicTransactionsRaw
	}
	every := p.CheckpointEvery
	if every <= 0 {
		every = defaultCheckpointEvery
	}

	txs, err := dataset.ReadDay(path)
	if err != nil {
		return fmt.Errorf("failed to load day file: %w", err)
	}

	file := filepath.Base(path)
	ckKey := "offset:" + file

	start, err := p.resumeOffset(ctx, ckKey, len(txs))
	if err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "publisher.replay",
		trace.WithAttributes(
			attribute.String("file", file),
			attribute.String("topic", topic),
			attribute.Int("rows", len(txs)),
			attribute.Int("resume_offset", start),
		))
	defer span.End()

	slog.Info("replay started",
		"file", file,
		"topic", topic,
		"rows", len(txs),
		"resume_offset", start,
	)

	p.setProgress(file, start, len(txs), false)

	var ticker *time.Ticker
	if p.Interval > 0 {
		ticker = time.NewTicker(p.Interval)
		defer ticker.Stop()
	}

	for i := start; i < len(txs); i++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		key, value, err := encode(txs[i])
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		if err := p.Bus.Publish(ctx, topic, key, value); err != nil {
			return fmt.Errorf("failed to publish row %d: %w", i, err)
		}

		published := i + 1
		p.setProgress(file, published, len(txs), false)

		if published%every == 0 {
			if err := p.saveOffset(ctx, ckKey, published); err != nil {
				return err
			}
			slog.Info("replay progress",
				"file", file,
				"published", published,
				"total", len(txs),
			)
		}
	}

	if err := p.Bus.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush bus: %w", err)
	}

	if p.Store != nil {
		if err := p.Store.Delete(ctx, ckKey); err != nil {
			return fmt.Errorf("failed to clear checkpoint: %w", err)
		}
	}

	p.setProgress(file, len(txs), len(txs), true)

	slog.Info("replay finished", "file", file, "published", len(txs)-start)
	return nil
}

func (p *Publisher) resumeOffset(ctx context.Context, key string, total int) (int, error) {
	if p.Store == nil {
		return 0, nil
	}

	raw, err := p.Store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if raw == nil {
		return 0, nil
	}

	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 || offset > total {
		// A corrupt position is worse than a duplicate replay.
		slog.Warn("discarding unusable checkpoint", "key", key, "value", string(raw))
		return 0, nil
	}
	return offset, nil
}

func (p *Publisher) saveOffset(ctx context.Context, key string, offset int) error {
	if p.Store == nil {
		return nil
	}
	if err := p.Store.Set(ctx, key, []byte(strconv.Itoa(offset)), p.CheckpointTTL); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

func encode(tx *domain.Transaction) ([]byte, []byte, error) {
	key, err := json.Marshal(messageKey{CustomerID: tx.CustomerID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal key: %w", err)
	}

	fraud := 0
	if tx.Fraud {
		fraud = 1
	}

	value, err := json.Marshal(messageValue{
		TransactionID: tx.ID,
		TxDatetime:    tx.DateTime.Format("2006-01-02T15:04:05"),
		CustomerID:    tx.CustomerID,
		TerminalID:    tx.TerminalID,
		TxAmount:      tx.Amount,
		TxFraud:       fraud,
		CustomerLat:   tx.CustomerLat,
		CustomerLon:   tx.CustomerLon,
		TerminalLat:   tx.TerminalLat,
		TerminalLon:   tx.TerminalLon,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	return key, value, nil
}
