package services

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"mortgages/internal/cache"
	"mortgages/internal/core"
	"mortgages/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

// countingCache wraps an LRU cache and counts operations.
type countingCache struct {
	inner *cache.LRUCache
	gets  int
	hits  int
	sets  int
}

func (c *countingCache) Get(ctx context.Context, key string) (string, bool) {
	c.gets++
	v, ok := c.inner.Get(ctx, key)
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *countingCache) Set(ctx context.Context, key, value string) {
	c.sets++
	c.inner.Set(ctx, key, value)
}

func TestComputeScheduleStandard(t *testing.T) {
	p := NewPlannerService(nil, nil)

	result, err := p.ComputeSchedule(context.Background(), ScheduleRequest{
		Principal:  400000,
		AnnualRate: 0.065,
		TermYears:  30,
	})
	if err != nil {
		t.Fatalf("ComputeSchedule: %v", err)
	}

	if math.Abs(result.MonthlyPayment-2528.27) > 0.01 {
		t.Errorf("MonthlyPayment = %v, want ~2528.27", result.MonthlyPayment)
	}
	if result.PayoffYears != 30 {
		t.Errorf("PayoffYears = %d, want 30", result.PayoffYears)
	}
	if result.Strategy != core.StrategyStandard {
		t.Errorf("Strategy = %q, want %q", result.Strategy, core.StrategyStandard)
	}
	if result.TotalInterest <= 0 {
		t.Errorf("TotalInterest = %v, want positive", result.TotalInterest)
	}
}

func TestComputeScheduleValidation(t *testing.T) {
	p := NewPlannerService(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     ScheduleRequest
		wantErr error
	}{
		{
			name:    "zero principal",
			req:     ScheduleRequest{AnnualRate: 0.05, TermYears: 30},
			wantErr: core.ErrInvalidPrincipal,
		},
		{
			name:    "rate out of range",
			req:     ScheduleRequest{Principal: 100000, AnnualRate: 1.5, TermYears: 30},
			wantErr: core.ErrInvalidRate,
		},
		{
			name:    "term too long",
			req:     ScheduleRequest{Principal: 100000, AnnualRate: 0.05, TermYears: 60},
			wantErr: core.ErrInvalidTerm,
		},
		{
			name:    "unknown strategy",
			req:     ScheduleRequest{Principal: 100000, AnnualRate: 0.05, TermYears: 30, Strategy: "weird"},
			wantErr: core.ErrInvalidStrategy,
		},
		{
			name:    "extra monthly without amount",
			req:     ScheduleRequest{Principal: 100000, AnnualRate: 0.05, TermYears: 30, Strategy: core.StrategyExtraMonthly},
			wantErr: core.ErrInvalidExtra,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ComputeSchedule(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComputeScheduleUsesCache(t *testing.T) {
	cc := &countingCache{inner: cache.NewLRUCache(10, time.Minute)}
	p := NewPlannerService(nil, cc)
	ctx := context.Background()

	req := ScheduleRequest{Principal: 250000, AnnualRate: 0.045, TermYears: 25}

	first, err := p.ComputeSchedule(ctx, req)
	if err != nil {
		t.Fatalf("ComputeSchedule: %v", err)
	}
	second, err := p.ComputeSchedule(ctx, req)
	if err != nil {
		t.Fatalf("ComputeSchedule: %v", err)
	}

	if cc.sets != 1 {
		t.Errorf("sets = %d, want 1", cc.sets)
	}
	if cc.hits != 1 {
		t.Errorf("hits = %d, want 1", cc.hits)
	}
	if first.TotalInterest != second.TotalInterest {
		t.Errorf("cached result differs: %v vs %v", first.TotalInterest, second.TotalInterest)
	}
	if len(first.Schedule) != len(second.Schedule) {
		t.Errorf("cached schedule length differs: %d vs %d", len(first.Schedule), len(second.Schedule))
	}
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	p := NewPlannerService(repo, nil)

	m, err := repo.CreateMortgage(ctx, core.Mortgage{
		Name:       "Main house",
		Principal:  400000,
		AnnualRate: 0.065,
		TermYears:  30,
	})
	if err != nil {
		t.Fatalf("CreateMortgage: %v", err)
	}

	sc, err := repo.CreateScenario(ctx, core.Scenario{
		MortgageID:   m.ID,
		Name:         "extra 500",
		Strategy:     core.StrategyExtraMonthly,
		ExtraMonthly: 500,
	})
	if err != nil {
		t.Fatalf("CreateScenario: %v", err)
	}

	cmp, err := p.Compare(ctx, m.ID, sc.ID)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if cmp.InterestSaved <= 0 {
		t.Errorf("InterestSaved = %v, want positive", cmp.InterestSaved)
	}
	if cmp.YearsSaved <= 0 {
		t.Errorf("YearsSaved = %v, want positive", cmp.YearsSaved)
	}
	if cmp.Alternative.PayoffYears >= cmp.Standard.PayoffYears {
		t.Errorf("alternative payoff %d should beat standard %d",
			cmp.Alternative.PayoffYears, cmp.Standard.PayoffYears)
	}
}

func TestCompareScenarioFromOtherMortgage(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	p := NewPlannerService(repo, nil)

	m1, _ := repo.CreateMortgage(ctx, core.Mortgage{Name: "a", Principal: 100000, AnnualRate: 0.05, TermYears: 20})
	m2, _ := repo.CreateMortgage(ctx, core.Mortgage{Name: "b", Principal: 100000, AnnualRate: 0.05, TermYears: 20})
	sc, _ := repo.CreateScenario(ctx, core.Scenario{
		MortgageID: m2.ID, Name: "s", Strategy: core.StrategyBiWeekly,
	})

	if _, err := p.Compare(ctx, m1.ID, sc.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for mismatched scenario, got %v", err)
	}
}

func TestDistributionPrefersExpensiveLoan(t *testing.T) {
	p := NewPlannerService(nil, nil)

	allocations, err := p.Distribution(context.Background(), DistributionRequest{
		Budget: 1000,
		Loans: []LoanInput{
			{ID: "cheap", AnnualRate: 0.04, YearsRemaining: 25},
			{ID: "dear", AnnualRate: 0.08, YearsRemaining: 20},
		},
	})
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}

	if len(allocations) != 2 {
		t.Fatalf("got %d allocations, want 2", len(allocations))
	}
	if allocations[0].MortgageID != "dear" {
		t.Errorf("top allocation = %q, want %q", allocations[0].MortgageID, "dear")
	}
	if allocations[0].Amount != 1000 {
		t.Errorf("top amount = %v, want 1000", allocations[0].Amount)
	}
	if allocations[1].Amount != 0 {
		t.Errorf("second amount = %v, want 0", allocations[1].Amount)
	}
}

func TestDistributionValidation(t *testing.T) {
	p := NewPlannerService(nil, nil)
	ctx := context.Background()

	if _, err := p.Distribution(ctx, DistributionRequest{Budget: 0, Loans: []LoanInput{{ID: "a", AnnualRate: 0.05, YearsRemaining: 10}}}); err == nil {
		t.Error("expected error for zero budget")
	}
	if _, err := p.Distribution(ctx, DistributionRequest{Budget: 100}); err == nil {
		t.Error("expected error for empty loans")
	}
	if _, err := p.Distribution(ctx, DistributionRequest{Budget: 100, Loans: []LoanInput{{ID: "a", AnnualRate: 2, YearsRemaining: 10}}}); !errors.Is(err, core.ErrInvalidRate) {
		t.Error("expected ErrInvalidRate for out-of-range rate")
	}
}

func TestDistributionForStored(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	p := NewPlannerService(repo, nil)

	if _, err := repo.CreateMortgage(ctx, core.Mortgage{Name: "a", Principal: 300000, AnnualRate: 0.07, TermYears: 20}); err != nil {
		t.Fatalf("CreateMortgage: %v", err)
	}
	if _, err := repo.CreateMortgage(ctx, core.Mortgage{Name: "b", Principal: 200000, AnnualRate: 0.065, TermYears: 20}); err != nil {
		t.Fatalf("CreateMortgage: %v", err)
	}

	allocations, err := p.DistributionForStored(ctx, 10000)
	if err != nil {
		t.Fatalf("DistributionForStored: %v", err)
	}

	if len(allocations) != 2 {
		t.Fatalf("got %d allocations, want 2", len(allocations))
	}
	var total float64
	for _, a := range allocations {
		total += a.Amount
	}
	if total != 10000 {
		t.Errorf("allocated total = %v, want exactly 10000", total)
	}
}

func TestDistributionForStoredEmpty(t *testing.T) {
	repo := newTestRepo(t)
	p := NewPlannerService(repo, nil)

	if _, err := p.DistributionForStored(context.Background(), 1000); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound with no mortgages, got %v", err)
	}
}
