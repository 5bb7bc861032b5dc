// Package domain defines the core types and interfaces for Kite.
package domain

import (
	"fmt"
	"time"
)

// SecondsPerDay is the number of seconds in one simulated day.
const SecondsPerDay = 86400

// ScenarioStolenCardFarBurst tags fraud transactions generated by the
// stolen-card burst pattern: a short cluster of high amounts at
// terminals far from the customer's home location.
const ScenarioStolenCardFarBurst = "STOLEN_CARD_FAR_BURST"

// Customer is a cardholder placed at a fixed geographic location.
// Immutable after placement.
type Customer struct {
	ID  string
	Lat float64
	Lon float64

	// Near holds the indices of terminals within the near radius,
	// or a fallback sample when none are in range. Never empty.
	Near []int
}

// Terminal is a payment terminal placed at a fixed geographic location.
// Immutable after placement.
type Terminal struct {
	ID  string
	Lat float64
	Lon float64
}

// Transaction is one generated card payment. Immutable once emitted.
type Transaction struct {
	ID            string
	DateTime      time.Time
	TimeSeconds   int // second of day, [0, 86400)
	TimeDays      int // day index within the run
	CustomerID    string
	TerminalID    string
	Amount        float64
	Fraud         bool
	FraudScenario string // empty for legitimate transactions
	CustomerLat   float64
	CustomerLon   float64
	TerminalLat   float64
	TerminalLon   float64
}

// CustomerID formats the identifier for the n-th customer.
func CustomerID(n int) string {
	return fmt.Sprintf("C%07d", n)
}

// TerminalID formats the identifier for the n-th terminal.
func TerminalID(n int) string {
	return fmt.Sprintf("T%06d", n)
}

// TransactionID formats the identifier for the n-th transaction of a
// run. The counter is global to the run and never resets per day, so
// identifiers are unique and strictly increasing in emission order.
func TransactionID(n int64) string {
	return fmt.Sprintf("TX%012d", n)
}
