// Package simulate is the generation core: it places customers and
// terminals, draws daily legitimate traffic and stolen-card fraud
// bursts, and assembles each day into an ordered dataset.
package simulate

import (
	"math/rand"
	"sort"
	"time"

	"github.com/opensource-finance/kite/internal/domain"
	"github.com/opensource-finance/kite/internal/geo"
	"github.com/opensource-finance/kite/internal/proximity"
)

// Simulator generates transaction days for one run. It is single
// threaded: the transaction counter and both random streams are owned
// by the calling goroutine, and days must be generated in order for the
// output to be reproducible.
type Simulator struct {
	cfg domain.SimulationConfig

	// genRNG drives placement, compromise draws, terminal choice,
	// fallback sampling, and time-of-day draws. statRNG drives the
	// Poisson counts and log-normal amounts. Two streams, both seeded
	// from the run seed, so the draw order of one never perturbs the
	// other.
	genRNG  *rand.Rand
	statRNG *rand.Rand

	customers []domain.Customer
	terminals []domain.Terminal

	customersByID map[string]*domain.Customer
	terminalsByID map[string]*domain.Terminal

	// counter is the global transaction counter. Never reset per day.
	counter int64
}

// New validates the configuration, places customers and terminals, and
// builds the near-terminal index.
func New(cfg domain.SimulationConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:     cfg,
		genRNG:  rand.New(rand.NewSource(cfg.Seed)),
		statRNG: rand.New(rand.NewSource(cfg.Seed)),
	}
	s.place()

	near := proximity.NearSets(s.genRNG, s.customers, s.terminals, cfg.NearRadiusKM, cfg.NearFallback)
	for i := range s.customers {
		s.customers[i].Near = near[i]
	}

	s.customersByID = make(map[string]*domain.Customer, len(s.customers))
	for i := range s.customers {
		s.customersByID[s.customers[i].ID] = &s.customers[i]
	}
	s.terminalsByID = make(map[string]*domain.Terminal, len(s.terminals))
	for i := range s.terminals {
		s.terminalsByID[s.terminals[i].ID] = &s.terminals[i]
	}

	return s, nil
}

// place scatters customers and terminals over their discs. Runs once;
// both populations are immutable afterwards.
func (s *Simulator) place() {
	center := geo.Point{Lat: s.cfg.CenterLat, Lon: s.cfg.CenterLon}

	s.customers = make([]domain.Customer, s.cfg.Customers)
	for i, p := range geo.SampleDisc(s.genRNG, center, s.cfg.CustomerRadiusKM, s.cfg.Customers) {
		s.customers[i] = domain.Customer{ID: domain.CustomerID(i), Lat: p.Lat, Lon: p.Lon}
	}

	s.terminals = make([]domain.Terminal, s.cfg.Terminals)
	for i, p := range geo.SampleDisc(s.genRNG, center, s.cfg.TerminalRadiusKM, s.cfg.Terminals) {
		s.terminals[i] = domain.Terminal{ID: domain.TerminalID(i), Lat: p.Lat, Lon: p.Lon}
	}
}

// Customers returns the placed customers.
func (s *Simulator) Customers() []domain.Customer { return s.customers }

// Terminals returns the placed terminals.
func (s *Simulator) Terminals() []domain.Terminal { return s.terminals }

// Day generates one simulated day: compromise selection, legitimate
// traffic, fraud bursts, then assembly into a time-ordered dataset.
func (s *Simulator) Day(day int) []*domain.Transaction {
	date := s.cfg.StartDate.AddDate(0, 0, day)

	compromised := s.drawCompromised()
	far := proximity.FarSets(s.genRNG, compromised, s.customers, s.terminals, s.cfg.FarRadiusKM, s.cfg.FarFallback)

	txs := s.generateLegit(day, date)
	txs = append(txs, s.generateBursts(day, date, compromised, far)...)

	s.assemble(txs)
	return txs
}

// drawCompromised re-samples compromise status independently for each
// customer. A customer can be flagged on multiple, non-contiguous days.
func (s *Simulator) drawCompromised() []int {
	var compromised []int
	for i := range s.customers {
		if s.genRNG.Float64() < s.cfg.CompromiseRate {
			compromised = append(compromised, i)
		}
	}
	return compromised
}

// generateLegit draws the day's legitimate transactions: a Poisson
// count per customer, each transaction at a near terminal, a uniform
// second of day, and a capped log-normal amount.
func (s *Simulator) generateLegit(day int, date time.Time) []*domain.Transaction {
	var txs []*domain.Transaction
	for i := range s.customers {
		c := &s.customers[i]
		n := poisson(s.statRNG, s.cfg.LegitRate)
		for k := 0; k < n; k++ {
			term := &s.terminals[c.Near[s.genRNG.Intn(len(c.Near))]]
			sec := s.genRNG.Intn(domain.SecondsPerDay)

			amount := logNormal(s.statRNG, s.cfg.LegitAmountMu, s.cfg.LegitAmountSigma)
			if amount > s.cfg.LegitAmountCap {
				amount = s.cfg.LegitAmountCap
			}

			txs = append(txs, s.emit(day, date, c, term, sec, roundCents(amount), ""))
		}
	}
	return txs
}

// generateBursts draws the day's fraud bursts: per compromised
// customer, a short cluster of transactions at far terminals within a
// fixed window, with clamped log-normal amounts.
func (s *Simulator) generateBursts(day int, date time.Time, compromised []int, far map[int][]int) []*domain.Transaction {
	var txs []*domain.Transaction
	for _, ci := range compromised {
		c := &s.customers[ci]
		farSet := far[ci]

		// Base time reserves room for the burst window at end of day.
		base := s.genRNG.Intn(domain.SecondsPerDay - 60)
		size := s.cfg.BurstMinSize + s.genRNG.Intn(s.cfg.BurstMaxSize-s.cfg.BurstMinSize+1)

		for k := 0; k < size; k++ {
			term := &s.terminals[farSet[s.genRNG.Intn(len(farSet))]]
			sec := base + s.genRNG.Intn(s.cfg.BurstWindowSecs)
			if sec > domain.SecondsPerDay-1 {
				sec = domain.SecondsPerDay - 1
			}

			amount := logNormal(s.statRNG, s.cfg.FraudAmountMu, s.cfg.FraudAmountSigma)
			if amount < s.cfg.FraudAmountMin {
				amount = s.cfg.FraudAmountMin
			}
			if amount > s.cfg.FraudAmountMax {
				amount = s.cfg.FraudAmountMax
			}

			txs = append(txs, s.emit(day, date, c, term, sec, roundCents(amount), domain.ScenarioStolenCardFarBurst))
		}
	}
	return txs
}

// emit builds a transaction and advances the global counter.
func (s *Simulator) emit(day int, date time.Time, c *domain.Customer, term *domain.Terminal, sec int, amount float64, scenario string) *domain.Transaction {
	s.counter++
	return &domain.Transaction{
		ID:            domain.TransactionID(s.counter),
		DateTime:      date.Add(time.Duration(sec) * time.Second),
		TimeSeconds:   sec,
		TimeDays:      day,
		CustomerID:    c.ID,
		TerminalID:    term.ID,
		Amount:        amount,
		Fraud:         scenario != "",
		FraudScenario: scenario,
	}
}

// assemble joins each transaction to its customer's and terminal's
// coordinates by identifier and orders the day ascending by second of
// day. The sort is stable, so equal seconds keep generation order.
func (s *Simulator) assemble(txs []*domain.Transaction) {
	for _, tx := range txs {
		if c, ok := s.customersByID[tx.CustomerID]; ok {
			tx.CustomerLat = c.Lat
			tx.CustomerLon = c.Lon
		}
		if term, ok := s.terminalsByID[tx.TerminalID]; ok {
			tx.TerminalLat = term.Lat
			tx.TerminalLon = term.Lon
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].TimeSeconds < txs[j].TimeSeconds
	})
}
