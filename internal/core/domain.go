package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StrategyStandard      Strategy = "standard"
	StrategyExtraMonthly  Strategy = "extra_monthly"
	StrategyLumpSum       Strategy = "lump_sum"
	StrategyBiWeekly      Strategy = "biweekly"
	StrategyAnnualLumpSum Strategy = "annual_lump_sum"
)

type (
	// Strategy selects one of the early-payment variants of the
	// amortization engine.
	Strategy string

	// Mortgage holds the stored loan parameters. AnnualRate is a decimal
	// fraction (0.065 = 6.5%); computed schedules are never stored, they
	// are recomputed from these fields on demand.
	Mortgage struct {
		ID         int64     `json:"id"`
		Name       string    `json:"name"`
		Principal  float64   `json:"principal"`
		AnnualRate float64   `json:"annualRate"`
		TermYears  int       `json:"termYears"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	// Scenario is a saved what-if configuration for a mortgage. Only the
	// parameter matching the strategy is meaningful; the others stay 0.
	Scenario struct {
		ID            int64     `json:"id"`
		MortgageID    int64     `json:"mortgageId"`
		Name          string    `json:"name"`
		Strategy      Strategy  `json:"strategy"`
		ExtraMonthly  float64   `json:"extraMonthly,omitempty"`
		LumpSum       float64   `json:"lumpSum,omitempty"`
		AnnualLumpSum float64   `json:"annualLumpSum,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrNameTooLong      = errors.New("name too long (max 100 characters)")
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidRate      = errors.New("annual rate must be in [0, 1)")
	ErrInvalidTerm      = errors.New("term must be between 1 and 50 years")
	ErrInvalidStrategy  = errors.New("invalid strategy")
	ErrInvalidExtra     = errors.New("strategy amount must be positive")
)

// IsValid returns true for a known strategy value.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyStandard, StrategyExtraMonthly, StrategyLumpSum, StrategyBiWeekly, StrategyAnnualLumpSum:
		return true
	default:
		return false
	}
}

func (s Strategy) String() string {
	return string(s)
}

func (m Mortgage) Validate() error {
	if len(strings.TrimSpace(m.Name)) == 0 {
		return ErrEmptyName
	}
	if len(m.Name) > 100 {
		return ErrNameTooLong
	}
	if m.Principal <= 0 {
		return ErrInvalidPrincipal
	}
	if m.AnnualRate < 0 || m.AnnualRate >= 1 {
		return ErrInvalidRate
	}
	if m.TermYears < 1 || m.TermYears > 50 {
		return ErrInvalidTerm
	}
	return nil
}

func (s Scenario) Validate() error {
	if s.MortgageID <= 0 {
		return errors.New("missing mortgage id")
	}
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if len(s.Name) > 100 {
		return ErrNameTooLong
	}
	if !s.Strategy.IsValid() {
		return ErrInvalidStrategy
	}

	// The amount the chosen strategy relies on must be positive; the
	// standard and bi-weekly strategies carry no extra amount at all.
	switch s.Strategy {
	case StrategyExtraMonthly:
		if s.ExtraMonthly <= 0 {
			return ErrInvalidExtra
		}
	case StrategyLumpSum:
		if s.LumpSum <= 0 {
			return ErrInvalidExtra
		}
	case StrategyAnnualLumpSum:
		if s.AnnualLumpSum <= 0 {
			return ErrInvalidExtra
		}
	}
	return nil
}
