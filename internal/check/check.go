// Package check validates emitted datasets with CEL row predicates.
// Every predicate must hold for every row of a day; a violation fails
// the run.
package check

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/opensource-finance/kite/internal/domain"
)

// Check is a named CEL predicate over one transaction row.
type Check struct {
	Name string
	Expr string
}

// Builtin returns the checks every generated dataset must satisfy:
// amount bounds by fraud flag, scenario-tag consistency, and the
// time-of-day range.
func Builtin() []Check {
	return []Check{
		{
			Name: "legit_amount_bounds",
			Expr: `fraud || (amount > 0.0 && amount <= 5000.0)`,
		},
		{
			Name: "fraud_amount_bounds",
			Expr: `!fraud || (amount >= 50.0 && amount <= 8000.0)`,
		},
		{
			Name: "scenario_tag",
			Expr: `fraud ? scenario == "STOLEN_CARD_FAR_BURST" : scenario == ""`,
		},
		{
			Name: "time_of_day_range",
			Expr: `time_seconds >= 0 && time_seconds < 86400`,
		},
	}
}

// Checker holds compiled predicates.
type Checker struct {
	env      *cel.Env
	programs []compiledCheck
}

type compiledCheck struct {
	check   Check
	program cel.Program
}

// Violation reports one row failing one check.
type Violation struct {
	Check string
	TxID  string
}

// New compiles the given checks against the row variable set.
func New(checks []Check) (*Checker, error) {
	env, err := cel.NewEnv(
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("fraud", cel.BoolType),
		cel.Variable("scenario", cel.StringType),
		cel.Variable("time_seconds", cel.IntType),
		cel.Variable("time_days", cel.IntType),
		cel.Variable("customer_id", cel.StringType),
		cel.Variable("terminal_id", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	c := &Checker{env: env}
	for _, chk := range checks {
		ast, iss := env.Compile(chk.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("failed to compile check %q: %w", chk.Name, iss.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("failed to build program for check %q: %w", chk.Name, err)
		}
		c.programs = append(c.programs, compiledCheck{check: chk, program: prg})
	}
	return c, nil
}

// Evaluate runs every check against every transaction and collects
// violations. An evaluation error (as opposed to a false result) aborts.
func (c *Checker) Evaluate(txs []*domain.Transaction) ([]Violation, error) {
	var violations []Violation
	for _, tx := range txs {
		activation := map[string]any{
			"amount":       tx.Amount,
			"fraud":        tx.Fraud,
			"scenario":     tx.FraudScenario,
			"time_seconds": tx.TimeSeconds,
			"time_days":    tx.TimeDays,
			"customer_id":  tx.CustomerID,
			"terminal_id":  tx.TerminalID,
		}
		for _, p := range c.programs {
			out, _, err := p.program.Eval(activation)
			if err != nil {
				return nil, fmt.Errorf("check %q failed on %s: %w", p.check.Name, tx.ID, err)
			}
			if out != types.True {
				violations = append(violations, Violation{Check: p.check.Name, TxID: tx.ID})
			}
		}
	}
	return violations, nil
}
