// Package finance implements the amortization and payment-optimization
// engine. Everything here is a pure function over plain numeric values:
// no I/O, no shared state, safe to call concurrently.
//
// Input validation is deliberately not performed here; callers (HTTP
// handlers, domain Validate methods) reject out-of-range parameters before
// they reach this package.
package finance

import "math"

const (
	monthsPerYear   = 12
	biweeklyPerYear = 26
	payoffEpsilon   = 0.01 // currency-unit tolerance for "paid off"
)

// YearlyAmortization aggregates twelve (or twenty-six) payment periods into
// a single year of a loan's life.
type YearlyAmortization struct {
	Year            int     `json:"year"`
	StartingBalance float64 `json:"startingBalance"`
	EndingBalance   float64 `json:"endingBalance"`
	Principal       float64 `json:"yearlyPrincipal"`
	Interest        float64 `json:"yearlyInterest"`
}

// MonthlyPayment returns the standard fixed monthly payment for a loan,
// using the annuity formula with a zero-rate branch.
// annualRate is a decimal fraction (0.065 = 6.5%).
func MonthlyPayment(principal, annualRate float64, termYears int) float64 {
	if principal == 0 {
		return 0
	}
	n := float64(termYears * monthsPerYear)
	if annualRate == 0 {
		return principal / n
	}
	monthlyRate := annualRate / monthsPerYear
	pow := math.Pow(1+monthlyRate, n)
	return principal * monthlyRate * pow / (pow - 1)
}

// PaymentFutureValue projects the value of an additional payment made today
// as annually-compounded growth at the loan's rate over the remaining term.
// A deliberate simplification for user-facing estimates: monthly compounding
// is not used here.
func PaymentFutureValue(additionalPayment, annualRate float64, yearsRemaining int) float64 {
	return additionalPayment * math.Pow(1+annualRate, float64(yearsRemaining))
}

// Schedule returns the year-by-year amortization of a loan under its
// standard monthly payment. The schedule ends after termYears or as soon as
// the balance is paid off, whichever comes first.
func Schedule(principal, annualRate float64, termYears int) []YearlyAmortization {
	payment := MonthlyPayment(principal, annualRate, termYears)
	return amortize(principal, annualRate/monthsPerYear, termYears, payment, monthsPerYear, 0)
}

// ScheduleWithExtraPayment amortizes with a fixed extra amount added to
// every monthly payment.
func ScheduleWithExtraPayment(principal, annualRate float64, termYears int, extraMonthly float64) []YearlyAmortization {
	payment := MonthlyPayment(principal, annualRate, termYears) + extraMonthly
	return amortize(principal, annualRate/monthsPerYear, termYears, payment, monthsPerYear, 0)
}

// ScheduleWithLumpSum applies a one-time payment to principal before the
// first month and recomputes the monthly payment against the reduced
// principal over the original term. A lump sum covering the whole principal
// yields a single zero-interest year.
func ScheduleWithLumpSum(principal, annualRate float64, termYears int, lumpSum float64) []YearlyAmortization {
	if lumpSum >= principal {
		return []YearlyAmortization{{
			Year:            1,
			StartingBalance: principal,
			EndingBalance:   0,
			Principal:       principal,
			Interest:        0,
		}}
	}
	reduced := principal - lumpSum
	payment := MonthlyPayment(reduced, annualRate, termYears)
	return amortize(reduced, annualRate/monthsPerYear, termYears, payment, monthsPerYear, 0)
}

// ScheduleWithBiWeekly amortizes with 26 payments per year, each half the
// standard monthly payment, accruing interest at annualRate/26 per period.
// This is a fixed 26-periods-per-year approximation, not true payment-date
// arithmetic.
func ScheduleWithBiWeekly(principal, annualRate float64, termYears int) []YearlyAmortization {
	payment := MonthlyPayment(principal, annualRate, termYears) / 2
	return amortize(principal, annualRate/biweeklyPerYear, termYears, payment, biweeklyPerYear, 0)
}

// ScheduleWithAnnualLumpSum amortizes with standard monthly payments plus an
// extra lump sum applied to the remaining balance at each year end, capped
// at that balance.
func ScheduleWithAnnualLumpSum(principal, annualRate float64, termYears int, annualLumpSum float64) []YearlyAmortization {
	payment := MonthlyPayment(principal, annualRate, termYears)
	return amortize(principal, annualRate/monthsPerYear, termYears, payment, monthsPerYear, annualLumpSum)
}

// amortize rolls periodsPerYear payment periods per year against the
// balance, aggregating principal and interest, until payoff or the term
// runs out. annualLump, when positive, is applied to the balance after the
// year's regular payments.
func amortize(principal, periodicRate float64, termYears int, payment float64, periodsPerYear int, annualLump float64) []YearlyAmortization {
	var years []YearlyAmortization
	balance := principal
	for year := 1; year <= termYears && balance > payoffEpsilon; year++ {
		principalPaid, interestPaid, ending := runYear(balance, payment, periodicRate, periodsPerYear)
		if annualLump > 0 && ending > payoffEpsilon {
			lump := annualLump
			if lump > ending {
				lump = ending
			}
			principalPaid += lump
			ending -= lump
		}
		if ending <= payoffEpsilon {
			// Fold the residue into the principal column so the year
			// balances exactly and the loan shows as fully paid.
			principalPaid += ending
			ending = 0
		}
		years = append(years, YearlyAmortization{
			Year:            year,
			StartingBalance: balance,
			EndingBalance:   ending,
			Principal:       principalPaid,
			Interest:        interestPaid,
		})
		balance = ending
	}
	return years
}

// runYear applies up to periods payments against balance at periodicRate.
// The principal portion of a payment is clamped to the remaining balance so
// the balance never goes negative. If the payment does not cover the
// accrued interest the principal portion goes negative and the balance
// grows; this negative-amortization case is intentionally not guarded (see
// TestScheduleNegativeAmortization).
func runYear(balance, payment, periodicRate float64, periods int) (principalPaid, interestPaid, ending float64) {
	ending = balance
	for i := 0; i < periods; i++ {
		if ending <= payoffEpsilon {
			break
		}
		interest := ending * periodicRate
		principal := payment - interest
		if principal > ending {
			principal = ending
		}
		principalPaid += principal
		interestPaid += interest
		ending -= principal
	}
	return principalPaid, interestPaid, ending
}

// TotalInterest sums the interest column of a schedule.
func TotalInterest(schedule []YearlyAmortization) float64 {
	var total float64
	for _, y := range schedule {
		total += y.Interest
	}
	return total
}
