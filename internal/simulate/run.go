package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/opensource-finance/kite/internal/check"
	"github.com/opensource-finance/kite/internal/dataset"
	"github.com/opensource-finance/kite/internal/domain"
)

var tracer = otel.Tracer("kite-simulate")

// Runner drives a full generation run: each day is generated, checked,
// archived, and written before the next begins.
type Runner struct {
	Sim     *Simulator
	Writer  *dataset.Writer
	Checker *check.Checker    // nil disables quality checks
	Archive domain.Repository // nil disables the archive sink

	// RunID labels archived rows. Assigned on Run when empty.
	RunID string
}

// Run generates and writes every day of the configured run.
func (r *Runner) Run(ctx context.Context) error {
	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}

	cfg := r.Sim.cfg
	if r.Archive != nil {
		run := &domain.Run{
			ID:        r.RunID,
			Seed:      cfg.Seed,
			StartDate: cfg.StartDate,
			Days:      cfg.Days,
			Customers: cfg.Customers,
			Terminals: cfg.Terminals,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.Archive.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
	}

	for day := 0; day < cfg.Days; day++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runDay(ctx, day); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) runDay(ctx context.Context, day int) error {
	ctx, span := tracer.Start(ctx, "simulate.day",
		trace.WithAttributes(
			attribute.Int("day", day),
			attribute.String("run.id", r.RunID),
		),
	)
	defer span.End()

	start := time.Now()
	txs := r.Sim.Day(day)
	span.SetAttributes(attribute.Int("transactions", len(txs)))

	fraud := 0
	for _, tx := range txs {
		if tx.Fraud {
			fraud++
		}
	}

	if r.Checker != nil {
		violations, err := r.Checker.Evaluate(txs)
		if err != nil {
			return fmt.Errorf("quality checks failed to run for day %d: %w", day, err)
		}
		if len(violations) > 0 {
			v := violations[0]
			return fmt.Errorf("day %d failed quality check %q on %s (%d violations)", day, v.Check, v.TxID, len(violations))
		}
	}

	date := r.Sim.cfg.StartDate.AddDate(0, 0, day)
	path, err := r.Writer.WriteDay(date, txs)
	if err != nil {
		return fmt.Errorf("failed to write day %d: %w", day, err)
	}

	if r.Archive != nil {
		if err := r.Archive.SaveDay(ctx, r.RunID, day, txs); err != nil {
			return fmt.Errorf("failed to archive day %d: %w", day, err)
		}
	}

	slog.Info("day generated",
		"day", day,
		"date", date.Format("2006-01-02"),
		"transactions", len(txs),
		"fraud", fraud,
		"file", path,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
