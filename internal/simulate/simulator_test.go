package simulate

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/opensource-finance/kite/internal/check"
	"github.com/opensource-finance/kite/internal/dataset"
	"github.com/opensource-finance/kite/internal/domain"
)

func testConfig() domain.SimulationConfig {
	cfg := domain.DefaultConfig().Simulation
	cfg.StartDate = time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)
	cfg.Days = 3
	cfg.Customers = 60
	cfg.Terminals = 25
	cfg.Seed = 1
	return cfg
}

// fraudHeavyConfig raises the traffic and compromise rates so tests see
// both streams without simulating thousands of customer-days.
func fraudHeavyConfig() domain.SimulationConfig {
	cfg := testConfig()
	cfg.LegitRate = 1.0
	cfg.CompromiseRate = 0.5
	return cfg
}

func txNumber(t *testing.T, id string) int64 {
	t.Helper()
	n, err := strconv.ParseInt(strings.TrimPrefix(id, "TX"), 10, 64)
	if err != nil {
		t.Fatalf("malformed transaction id %q: %v", id, err)
	}
	return n
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.SimulationConfig)
		wantErr error
	}{
		{"MissingStartDate", func(c *domain.SimulationConfig) { c.StartDate = time.Time{} }, domain.ErrParameter},
		{"ZeroDays", func(c *domain.SimulationConfig) { c.Days = 0 }, domain.ErrParameter},
		{"ZeroCustomers", func(c *domain.SimulationConfig) { c.Customers = 0 }, domain.ErrConfiguration},
		{"ZeroTerminals", func(c *domain.SimulationConfig) { c.Terminals = 0 }, domain.ErrConfiguration},
		{"BadBurstRange", func(c *domain.SimulationConfig) { c.BurstMinSize = 5; c.BurstMaxSize = 2 }, domain.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg); !errors.Is(err, tt.wantErr) {
				t.Errorf("New error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlacement(t *testing.T) {
	sim, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if len(sim.Customers()) != 60 {
		t.Errorf("expected 60 customers, got %d", len(sim.Customers()))
	}
	if len(sim.Terminals()) != 25 {
		t.Errorf("expected 25 terminals, got %d", len(sim.Terminals()))
	}

	t.Run("IdentifierFormats", func(t *testing.T) {
		if got := sim.Customers()[3].ID; got != "C0000003" {
			t.Errorf("customer id = %s, want C0000003", got)
		}
		if got := sim.Terminals()[24].ID; got != "T000024" {
			t.Errorf("terminal id = %s, want T000024", got)
		}
	})

	t.Run("NearSetsNonEmpty", func(t *testing.T) {
		for _, c := range sim.Customers() {
			if len(c.Near) == 0 {
				t.Errorf("customer %s has an empty near set", c.ID)
			}
		}
	})
}

func TestDeterminism(t *testing.T) {
	cfg := fraudHeavyConfig()

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for day := 0; day < cfg.Days; day++ {
		txA := a.Day(day)
		txB := b.Day(day)
		if !reflect.DeepEqual(txA, txB) {
			t.Fatalf("day %d differs between identically seeded runs", day)
		}
	}
}

func TestTransactionIDs(t *testing.T) {
	cfg := fraudHeavyConfig()
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	seen := map[string]bool{}
	prevDayMax := int64(0)

	for day := 0; day < cfg.Days; day++ {
		txs := sim.Day(day)
		if len(txs) == 0 {
			t.Fatalf("day %d produced no transactions under fraud-heavy config", day)
		}

		dayMin, dayMax := int64(math.MaxInt64), int64(0)
		for _, tx := range txs {
			if seen[tx.ID] {
				t.Fatalf("duplicate transaction id %s", tx.ID)
			}
			seen[tx.ID] = true

			n := txNumber(t, tx.ID)
			if n < dayMin {
				dayMin = n
			}
			if n > dayMax {
				dayMax = n
			}
		}

		// The counter never resets, so later days always carry
		// higher identifiers.
		if dayMin <= prevDayMax {
			t.Fatalf("day %d id %d does not continue the run counter (previous max %d)", day, dayMin, prevDayMax)
		}
		prevDayMax = dayMax
	}
}

func TestAmountsAndScenarioTags(t *testing.T) {
	cfg := fraudHeavyConfig()
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sawLegit, sawFraud := false, false
	for day := 0; day < cfg.Days; day++ {
		for _, tx := range sim.Day(day) {
			cents := tx.Amount * 100
			if math.Abs(cents-math.Round(cents)) > 1e-6 {
				t.Errorf("amount %v of %s is not rounded to cents", tx.Amount, tx.ID)
			}

			if tx.Fraud {
				sawFraud = true
				if tx.Amount < 50 || tx.Amount > 8000 {
					t.Errorf("fraud amount %v of %s out of [50, 8000]", tx.Amount, tx.ID)
				}
				if tx.FraudScenario != domain.ScenarioStolenCardFarBurst {
					t.Errorf("fraud row %s has scenario %q", tx.ID, tx.FraudScenario)
				}
			} else {
				sawLegit = true
				if tx.Amount <= 0 || tx.Amount > 5000 {
					t.Errorf("legit amount %v of %s out of (0, 5000]", tx.Amount, tx.ID)
				}
				if tx.FraudScenario != "" {
					t.Errorf("legit row %s has scenario %q", tx.ID, tx.FraudScenario)
				}
			}
		}
	}

	if !sawLegit || !sawFraud {
		t.Fatalf("expected both streams in fraud-heavy config (legit=%v fraud=%v)", sawLegit, sawFraud)
	}
}

func TestBurstShape(t *testing.T) {
	cfg := fraudHeavyConfig()
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for day := 0; day < cfg.Days; day++ {
		bursts := map[string][]*domain.Transaction{}
		for _, tx := range sim.Day(day) {
			if tx.Fraud {
				bursts[tx.CustomerID] = append(bursts[tx.CustomerID], tx)
			}
		}

		for customer, txs := range bursts {
			if len(txs) < cfg.BurstMinSize || len(txs) > cfg.BurstMaxSize {
				t.Errorf("day %d customer %s burst size %d out of [%d, %d]",
					day, customer, len(txs), cfg.BurstMinSize, cfg.BurstMaxSize)
			}

			minSec, maxSec := domain.SecondsPerDay, 0
			for _, tx := range txs {
				if tx.TimeSeconds < minSec {
					minSec = tx.TimeSeconds
				}
				if tx.TimeSeconds > maxSec {
					maxSec = tx.TimeSeconds
				}
			}
			if maxSec-minSec >= cfg.BurstWindowSecs {
				t.Errorf("day %d customer %s burst spans %d seconds, window is %d",
					day, customer, maxSec-minSec, cfg.BurstWindowSecs)
			}
			if maxSec > domain.SecondsPerDay-1 {
				t.Errorf("day %d customer %s burst leaks past end of day: %d", day, customer, maxSec)
			}
		}
	}
}

func TestDayOrdering(t *testing.T) {
	cfg := fraudHeavyConfig()
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for day := 0; day < cfg.Days; day++ {
		txs := sim.Day(day)
		for i := 1; i < len(txs); i++ {
			if txs[i].TimeSeconds < txs[i-1].TimeSeconds {
				t.Fatalf("day %d not sorted at row %d: %d after %d",
					day, i, txs[i].TimeSeconds, txs[i-1].TimeSeconds)
			}
		}

		for _, tx := range txs {
			if tx.TimeDays != day {
				t.Errorf("row %s has day %d, want %d", tx.ID, tx.TimeDays, day)
			}
			if tx.CustomerLat == 0 && tx.CustomerLon == 0 {
				t.Errorf("row %s missing customer coordinates", tx.ID)
			}
			if tx.TerminalLat == 0 && tx.TerminalLon == 0 {
				t.Errorf("row %s missing terminal coordinates", tx.ID)
			}
		}
	}
}

func TestLegitRateMatchesPoissonMean(t *testing.T) {
	cfg := testConfig()
	cfg.Customers = 2000
	cfg.Days = 1
	cfg.CompromiseRate = 0 // isolate the legitimate stream

	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	txs := sim.Day(0)
	mean := float64(len(txs)) / float64(cfg.Customers)
	if math.Abs(mean-cfg.LegitRate) > 0.05 {
		t.Errorf("per-customer mean %.4f too far from configured rate %.2f", mean, cfg.LegitRate)
	}
}

func TestRunnerWritesEveryDay(t *testing.T) {
	// Reference scenario: tiny population, one day; the day file must
	// exist with the full header even if no transaction is drawn.
	cfg := testConfig()
	cfg.Customers = 10
	cfg.Terminals = 5
	cfg.Days = 2
	cfg.Seed = 1

	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	dir := t.TempDir()
	writer, err := dataset.NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	checker, err := check.New(check.Builtin())
	if err != nil {
		t.Fatalf("check.New failed: %v", err)
	}

	runner := &Runner{Sim: sim, Writer: writer, Checker: checker}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, name := range []string{"transactions_20250121.csv", "transactions_20250122.csv"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("missing day file %s: %v", name, err)
		}
		header := strings.SplitN(string(data), "\n", 2)[0]
		if header != strings.Join(dataset.Columns, ",") {
			t.Errorf("%s header = %q", name, header)
		}
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	sim, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	writer, err := dataset.NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &Runner{Sim: sim, Writer: writer}
	if err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}
