package finance

import (
	"math"
	"testing"
)

// within reports whether got is within tol of want.
func within(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		termYears int
		want      float64
		tol       float64
	}{
		{
			name:      "400k at 6.5% over 30 years",
			principal: 400000,
			rate:      0.065,
			termYears: 30,
			want:      2528.27,
			tol:       0.01,
		},
		{
			name:      "300k at 5.5% over 15 years",
			principal: 300000,
			rate:      0.055,
			termYears: 15,
			want:      2451.25,
			tol:       0.01,
		},
		{
			name:      "zero principal",
			principal: 0,
			rate:      0.05,
			termYears: 30,
			want:      0,
			tol:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyPayment(tt.principal, tt.rate, tt.termYears)
			if !within(got, tt.want, tt.tol) {
				t.Errorf("MonthlyPayment(%v, %v, %d) = %v, want %v ± %v",
					tt.principal, tt.rate, tt.termYears, got, tt.want, tt.tol)
			}
		})
	}
}

func TestMonthlyPaymentZeroRate(t *testing.T) {
	// Zero-interest loans divide exactly: 120000 over 120 months.
	got := MonthlyPayment(120000, 0, 10)
	if got != 1000 {
		t.Errorf("MonthlyPayment(120000, 0, 10) = %v, want exactly 1000", got)
	}
}

func TestScheduleFirstYear(t *testing.T) {
	schedule := Schedule(400000, 0.065, 30)
	if len(schedule) != 30 {
		t.Fatalf("schedule length = %d, want 30", len(schedule))
	}

	first := schedule[0]
	if first.Year != 1 {
		t.Errorf("first year index = %d, want 1", first.Year)
	}
	if !within(first.Interest, 25868.36, 0.05) {
		t.Errorf("year 1 interest = %v, want ≈ 25868.36", first.Interest)
	}
	if !within(first.Principal, 4470.90, 0.05) {
		t.Errorf("year 1 principal = %v, want ≈ 4470.90", first.Principal)
	}
	if !within(first.StartingBalance-first.Principal, first.EndingBalance, 0.01) {
		t.Errorf("year 1 does not balance: %v - %v != %v",
			first.StartingBalance, first.Principal, first.EndingBalance)
	}
}

func TestScheduleInvariants(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		termYears int
	}{
		{name: "typical 30 year", principal: 400000, rate: 0.065, termYears: 30},
		{name: "short high rate", principal: 50000, rate: 0.09, termYears: 5},
		{name: "zero rate", principal: 120000, rate: 0, termYears: 10},
		{name: "one year", principal: 10000, rate: 0.04, termYears: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := Schedule(tt.principal, tt.rate, tt.termYears)
			if len(schedule) == 0 || len(schedule) > tt.termYears {
				t.Fatalf("schedule length = %d, want 1..%d", len(schedule), tt.termYears)
			}

			var totalPrincipal float64
			for i, y := range schedule {
				if y.Year != i+1 {
					t.Errorf("year %d has index %d", i+1, y.Year)
				}
				if y.EndingBalance < 0 {
					t.Errorf("year %d ending balance negative: %v", y.Year, y.EndingBalance)
				}
				if !within(y.StartingBalance-y.Principal, y.EndingBalance, 0.01) {
					t.Errorf("year %d does not balance", y.Year)
				}
				totalPrincipal += y.Principal
			}

			if !within(totalPrincipal, tt.principal, 0.01) {
				t.Errorf("total principal = %v, want ≈ %v", totalPrincipal, tt.principal)
			}
			if last := schedule[len(schedule)-1]; !within(last.EndingBalance, 0, 0.01) {
				t.Errorf("final ending balance = %v, want ≈ 0", last.EndingBalance)
			}
		})
	}
}

func TestScheduleWithExtraPayment(t *testing.T) {
	standard := Schedule(400000, 0.065, 30)
	extra := ScheduleWithExtraPayment(400000, 0.065, 30, 300)

	if len(extra) > len(standard) {
		t.Errorf("extra-payment schedule is longer: %d vs %d", len(extra), len(standard))
	}
	if len(extra) >= len(standard) {
		t.Errorf("300/month against a 30-year loan should shorten the schedule, got %d years", len(extra))
	}
	if ti, ts := TotalInterest(extra), TotalInterest(standard); ti >= ts {
		t.Errorf("extra-payment interest %v not below standard %v", ti, ts)
	}

	// Zero extra must reproduce the standard schedule.
	same := ScheduleWithExtraPayment(400000, 0.065, 30, 0)
	if len(same) != len(standard) {
		t.Errorf("zero extra changed schedule length: %d vs %d", len(same), len(standard))
	}
}

func TestScheduleWithLumpSum(t *testing.T) {
	t.Run("lump sum covers principal", func(t *testing.T) {
		schedule := ScheduleWithLumpSum(200000, 0.06, 30, 200000)
		if len(schedule) != 1 {
			t.Fatalf("schedule length = %d, want 1", len(schedule))
		}
		if schedule[0].Interest != 0 {
			t.Errorf("interest = %v, want 0", schedule[0].Interest)
		}
		if schedule[0].EndingBalance != 0 {
			t.Errorf("ending balance = %v, want 0", schedule[0].EndingBalance)
		}
	})

	t.Run("lump sum exceeds principal", func(t *testing.T) {
		schedule := ScheduleWithLumpSum(200000, 0.06, 30, 250000)
		if len(schedule) != 1 || schedule[0].Interest != 0 {
			t.Fatalf("want a single zero-interest year, got %+v", schedule)
		}
	})

	t.Run("partial lump sum reamortizes over original term", func(t *testing.T) {
		schedule := ScheduleWithLumpSum(400000, 0.065, 30, 50000)
		if len(schedule) != 30 {
			t.Errorf("schedule length = %d, want 30 (payment recomputed, term kept)", len(schedule))
		}
		if got := schedule[0].StartingBalance; got != 350000 {
			t.Errorf("year 1 starting balance = %v, want reduced principal 350000", got)
		}
		if ti, ts := TotalInterest(schedule), TotalInterest(Schedule(400000, 0.065, 30)); ti >= ts {
			t.Errorf("lump-sum interest %v not below standard %v", ti, ts)
		}
	})
}

func TestScheduleWithBiWeekly(t *testing.T) {
	standard := Schedule(400000, 0.065, 30)
	biweekly := ScheduleWithBiWeekly(400000, 0.065, 30)

	// 26 half payments a year amount to one extra monthly payment, which
	// must shorten the payoff and cut interest.
	if len(biweekly) >= len(standard) {
		t.Errorf("bi-weekly schedule not shorter: %d vs %d", len(biweekly), len(standard))
	}
	if ti, ts := TotalInterest(biweekly), TotalInterest(standard); ti >= ts {
		t.Errorf("bi-weekly interest %v not below standard %v", ti, ts)
	}

	var totalPrincipal float64
	for _, y := range biweekly {
		totalPrincipal += y.Principal
	}
	if !within(totalPrincipal, 400000, 0.01) {
		t.Errorf("total principal = %v, want ≈ 400000", totalPrincipal)
	}
}

func TestScheduleWithAnnualLumpSum(t *testing.T) {
	standard := Schedule(400000, 0.065, 30)
	annual := ScheduleWithAnnualLumpSum(400000, 0.065, 30, 5000)

	if len(annual) >= len(standard) {
		t.Errorf("annual lump sum schedule not shorter: %d vs %d", len(annual), len(standard))
	}
	if ti, ts := TotalInterest(annual), TotalInterest(standard); ti >= ts {
		t.Errorf("annual lump sum interest %v not below standard %v", ti, ts)
	}

	// The lump counts as principal: year 1 principal exceeds the standard
	// schedule's by at least the lump amount.
	if diff := annual[0].Principal - standard[0].Principal; diff < 5000 {
		t.Errorf("year 1 principal difference = %v, want >= 5000", diff)
	}

	// A lump larger than the remaining balance is capped, never overshoots.
	capped := ScheduleWithAnnualLumpSum(10000, 0.05, 10, 1000000)
	if len(capped) != 1 {
		t.Fatalf("schedule length = %d, want 1", len(capped))
	}
	if capped[0].EndingBalance != 0 {
		t.Errorf("ending balance = %v, want 0", capped[0].EndingBalance)
	}
}

// TestScheduleNegativeAmortization documents the degenerate case where the
// payment is smaller than the accruing interest: the principal portion goes
// negative and the balance grows. The engine reproduces this behavior
// rather than guarding against it; rejecting such inputs is the caller's
// job.
func TestScheduleNegativeAmortization(t *testing.T) {
	// A negative extra payment pushes the effective payment below the
	// monthly interest on a 400k balance.
	schedule := ScheduleWithExtraPayment(400000, 0.065, 30, -2000)
	if len(schedule) != 30 {
		t.Fatalf("schedule length = %d, want full 30 years", len(schedule))
	}
	first := schedule[0]
	if first.Principal >= 0 {
		t.Errorf("year 1 principal = %v, expected negative (payment below interest)", first.Principal)
	}
	if first.EndingBalance <= first.StartingBalance {
		t.Errorf("balance did not grow: %v -> %v", first.StartingBalance, first.EndingBalance)
	}
	if last := schedule[29]; last.EndingBalance <= 400000 {
		t.Errorf("final balance = %v, expected continued growth", last.EndingBalance)
	}
}

func TestPaymentFutureValue(t *testing.T) {
	tests := []struct {
		name    string
		payment float64
		rate    float64
		years   int
		want    float64
		tol     float64
	}{
		{name: "zero years", payment: 1000, rate: 0.05, years: 0, want: 1000, tol: 0},
		{name: "zero rate", payment: 1000, rate: 0, years: 10, want: 1000, tol: 0},
		{name: "doubles at 8% over 9 years", payment: 100, rate: 0.08, years: 9, want: 199.90, tol: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaymentFutureValue(tt.payment, tt.rate, tt.years)
			if !within(got, tt.want, tt.tol) {
				t.Errorf("PaymentFutureValue(%v, %v, %d) = %v, want %v",
					tt.payment, tt.rate, tt.years, got, tt.want)
			}
		})
	}
}
