package finance

import (
	"math"
	"sort"
)

// Empirical constants for the distribution heuristic. Kept as-is rather
// than re-derived; the allocator's contract is behavioral, not optimal.
const (
	// SmallBudgetThreshold is the budget at or below which the whole
	// amount goes to the top-ranked loan instead of being fragmented.
	SmallBudgetThreshold = 100.0

	// ContendingBand is the multiplicative ROI band: loans with
	// roi > topROI*ContendingBand are close enough to share the budget.
	ContendingBand = 0.85
)

// MortgageOptimization describes one loan as seen by the allocator. The
// FutureValue and ReturnOnInvestment fields are a precomputed reference for
// ranking, typically from PaymentFutureValue with a fixed test payment.
type MortgageOptimization struct {
	ID                 string  `json:"mortgageId"`
	InterestRate       float64 `json:"interestRate"`
	YearsRemaining     int     `json:"yearsRemaining"`
	FutureValue        float64 `json:"futureValue"`
	ReturnOnInvestment float64 `json:"returnOnInvestment"`
}

// Allocation is the allocator's per-loan output. Amounts sum exactly to the
// input budget; loans outside the contending set carry zeros.
type Allocation struct {
	MortgageID  string  `json:"mortgageId"`
	Amount      float64 `json:"amount"`
	FutureValue float64 `json:"futureValue"`
	ROI         float64 `json:"roi"`
}

// OptimalPaymentDistribution spreads one extra-payment budget across loans,
// favoring the highest return. Loans are ranked by ReturnOnInvestment
// descending (stable, so input order breaks ties); the budget either goes
// entirely to the top loan or is split proportionally among loans whose ROI
// falls within the contending band of the top one. Returns nil when there
// are no loans or no budget.
func OptimalPaymentDistribution(loans []MortgageOptimization, extraPayment float64) []Allocation {
	if len(loans) == 0 || extraPayment <= 0 {
		return nil
	}

	ranked := make([]MortgageOptimization, len(loans))
	copy(ranked, loans)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ReturnOnInvestment > ranked[j].ReturnOnInvestment
	})

	allocations := make([]Allocation, len(ranked))
	for i, loan := range ranked {
		allocations[i] = Allocation{MortgageID: loan.ID}
	}

	if len(ranked) == 1 || extraPayment <= SmallBudgetThreshold {
		allocate(&allocations[0], ranked[0], extraPayment)
		return allocations
	}

	// The contending set is the ranked prefix within the ROI band; the top
	// loan is always a member.
	contending := 1
	topROI := ranked[0].ReturnOnInvestment
	for i := 1; i < len(ranked); i++ {
		if ranked[i].ReturnOnInvestment > topROI*ContendingBand {
			contending++
		} else {
			break
		}
	}
	if contending == 1 {
		allocate(&allocations[0], ranked[0], extraPayment)
		return allocations
	}

	var totalROI float64
	for i := 0; i < contending; i++ {
		totalROI += ranked[i].ReturnOnInvestment
	}
	if totalROI <= 0 {
		allocate(&allocations[0], ranked[0], extraPayment)
		return allocations
	}

	var allocated float64
	for i := 0; i < contending; i++ {
		amount := math.Round(extraPayment * ranked[i].ReturnOnInvestment / totalROI)
		allocate(&allocations[i], ranked[i], amount)
		allocated += amount
	}

	// Integer rounding can leave the sum off by a unit or two; the whole
	// difference lands on the top-ranked loan to keep the sum exact.
	if diff := extraPayment - allocated; diff != 0 {
		allocate(&allocations[0], ranked[0], allocations[0].Amount+diff)
	}

	return allocations
}

// allocate fills one allocation, projecting the amount's future value with
// the loan's own rate and remaining term.
func allocate(a *Allocation, loan MortgageOptimization, amount float64) {
	a.Amount = amount
	if amount <= 0 {
		a.FutureValue = 0
		a.ROI = 0
		return
	}
	a.FutureValue = PaymentFutureValue(amount, loan.InterestRate, loan.YearsRemaining)
	a.ROI = (a.FutureValue - amount) / amount * 100
}
