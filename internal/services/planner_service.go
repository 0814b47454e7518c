package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"mortgages/internal/cache"
	"mortgages/internal/core"
	"mortgages/internal/finance"
	"mortgages/internal/storage"
)

// referencePayment is the fixed extra payment used to rank mortgages when
// deciding where budget does the most good. Using the same amount for every
// loan makes the resulting ROI figures comparable.
const referencePayment = 100.0

// PlannerService computes amortization schedules, scenario comparisons and
// payment distributions. Results are pure functions of their inputs, so they
// are cached aggressively.
type PlannerService struct {
	storage *storage.SQLiteRepository
	cache   cache.ResultCache
}

func NewPlannerService(storage *storage.SQLiteRepository, resultCache cache.ResultCache) *PlannerService {
	return &PlannerService{
		storage: storage,
		cache:   resultCache,
	}
}

// ScheduleRequest holds the inputs for a stateless schedule calculation.
type ScheduleRequest struct {
	Principal     float64       `json:"principal"`
	AnnualRate    float64       `json:"annualRate"`
	TermYears     int           `json:"termYears"`
	Strategy      core.Strategy `json:"strategy"`
	ExtraMonthly  float64       `json:"extraMonthly,omitempty"`
	LumpSum       float64       `json:"lumpSum,omitempty"`
	AnnualLumpSum float64       `json:"annualLumpSum,omitempty"`
}

func (r ScheduleRequest) Validate() error {
	if r.Principal <= 0 {
		return core.ErrInvalidPrincipal
	}
	if r.AnnualRate < 0 || r.AnnualRate >= 1 {
		return core.ErrInvalidRate
	}
	if r.TermYears < 1 || r.TermYears > 50 {
		return core.ErrInvalidTerm
	}
	if r.Strategy == "" {
		return nil // defaults to standard
	}
	if !r.Strategy.IsValid() {
		return core.ErrInvalidStrategy
	}
	switch r.Strategy {
	case core.StrategyExtraMonthly:
		if r.ExtraMonthly <= 0 {
			return core.ErrInvalidExtra
		}
	case core.StrategyLumpSum:
		if r.LumpSum <= 0 {
			return core.ErrInvalidExtra
		}
	case core.StrategyAnnualLumpSum:
		if r.AnnualLumpSum <= 0 {
			return core.ErrInvalidExtra
		}
	}
	return nil
}

// ScheduleResult is a computed amortization schedule with its headline figures.
type ScheduleResult struct {
	Strategy       core.Strategy               `json:"strategy"`
	MonthlyPayment float64                     `json:"monthlyPayment"`
	PayoffYears    int                         `json:"payoffYears"`
	TotalInterest  float64                     `json:"totalInterest"`
	Schedule       []finance.YearlyAmortization `json:"schedule"`
}

// Comparison contrasts a scenario's schedule against the standard one.
type Comparison struct {
	MortgageID    int64          `json:"mortgageId"`
	ScenarioID    int64          `json:"scenarioId"`
	Standard      ScheduleResult `json:"standard"`
	Alternative   ScheduleResult `json:"alternative"`
	InterestSaved float64        `json:"interestSaved"`
	YearsSaved    int            `json:"yearsSaved"`
}

// LoanInput identifies one loan in a stateless distribution request.
type LoanInput struct {
	ID             string  `json:"id"`
	AnnualRate     float64 `json:"annualRate"`
	YearsRemaining int     `json:"yearsRemaining"`
}

// DistributionRequest holds the inputs for a payment distribution calculation.
type DistributionRequest struct {
	Budget float64     `json:"budget"`
	Loans  []LoanInput `json:"loans"`
}

func (r DistributionRequest) Validate() error {
	if r.Budget <= 0 {
		return errors.New("budget must be positive")
	}
	if len(r.Loans) == 0 {
		return errors.New("at least one loan is required")
	}
	for _, loan := range r.Loans {
		if loan.AnnualRate < 0 || loan.AnnualRate >= 1 {
			return core.ErrInvalidRate
		}
		if loan.YearsRemaining < 1 {
			return core.ErrInvalidTerm
		}
	}
	return nil
}

// ComputeSchedule runs a stateless schedule calculation.
func (p *PlannerService) ComputeSchedule(ctx context.Context, req ScheduleRequest) (ScheduleResult, error) {
	if err := req.Validate(); err != nil {
		return ScheduleResult{}, err
	}

	key := scheduleCacheKey(req)
	if cached, ok := p.cacheGet(ctx, key); ok {
		var result ScheduleResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result, nil
		}
		slog.WarnContext(ctx, "Discarding undecodable cache entry", "key", key)
	}

	result := computeSchedule(req)
	p.cachePut(ctx, key, result)

	return result, nil
}

// ScheduleForMortgage computes the standard schedule of a stored mortgage.
func (p *PlannerService) ScheduleForMortgage(ctx context.Context, mortgageID int64) (ScheduleResult, error) {
	m, err := p.storage.GetMortgage(ctx, mortgageID)
	if err != nil {
		return ScheduleResult{}, err
	}

	return p.ComputeSchedule(ctx, ScheduleRequest{
		Principal:  m.Principal,
		AnnualRate: m.AnnualRate,
		TermYears:  m.TermYears,
		Strategy:   core.StrategyStandard,
	})
}

// ScheduleForScenario computes the schedule a stored scenario produces.
func (p *PlannerService) ScheduleForScenario(ctx context.Context, scenarioID int64) (ScheduleResult, error) {
	sc, err := p.storage.GetScenario(ctx, scenarioID)
	if err != nil {
		return ScheduleResult{}, err
	}
	m, err := p.storage.GetMortgage(ctx, sc.MortgageID)
	if err != nil {
		return ScheduleResult{}, err
	}

	return p.ComputeSchedule(ctx, requestFor(m, sc))
}

// Compare contrasts a scenario against the standard schedule of its mortgage.
func (p *PlannerService) Compare(ctx context.Context, mortgageID, scenarioID int64) (Comparison, error) {
	sc, err := p.storage.GetScenario(ctx, scenarioID)
	if err != nil {
		return Comparison{}, err
	}
	if sc.MortgageID != mortgageID {
		return Comparison{}, fmt.Errorf("scenario %d does not belong to mortgage %d: %w",
			scenarioID, mortgageID, storage.ErrNotFound)
	}
	m, err := p.storage.GetMortgage(ctx, mortgageID)
	if err != nil {
		return Comparison{}, err
	}

	standard, err := p.ComputeSchedule(ctx, ScheduleRequest{
		Principal:  m.Principal,
		AnnualRate: m.AnnualRate,
		TermYears:  m.TermYears,
		Strategy:   core.StrategyStandard,
	})
	if err != nil {
		return Comparison{}, err
	}

	alternative, err := p.ComputeSchedule(ctx, requestFor(m, sc))
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		MortgageID:    mortgageID,
		ScenarioID:    scenarioID,
		Standard:      standard,
		Alternative:   alternative,
		InterestSaved: standard.TotalInterest - alternative.TotalInterest,
		YearsSaved:    standard.PayoffYears - alternative.PayoffYears,
	}, nil
}

// Distribution allocates a budget across the loans in the request.
func (p *PlannerService) Distribution(ctx context.Context, req DistributionRequest) ([]finance.Allocation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loans := make([]finance.MortgageOptimization, len(req.Loans))
	for i, loan := range req.Loans {
		loans[i] = optimizationFor(loan.ID, loan.AnnualRate, loan.YearsRemaining)
	}

	return finance.OptimalPaymentDistribution(loans, req.Budget), nil
}

// DistributionForStored allocates a budget across all stored mortgages.
func (p *PlannerService) DistributionForStored(ctx context.Context, budget float64) ([]finance.Allocation, error) {
	if budget <= 0 {
		return nil, errors.New("budget must be positive")
	}

	mortgages, err := p.storage.ListMortgages(ctx)
	if err != nil {
		return nil, err
	}
	if len(mortgages) == 0 {
		return nil, fmt.Errorf("no mortgages stored: %w", storage.ErrNotFound)
	}

	loans := make([]finance.MortgageOptimization, len(mortgages))
	for i, m := range mortgages {
		loans[i] = optimizationFor(strconv.FormatInt(m.ID, 10), m.AnnualRate, yearsRemaining(m))
	}

	return finance.OptimalPaymentDistribution(loans, budget), nil
}

// yearsRemaining estimates how many full years are left on a stored mortgage.
func yearsRemaining(m core.Mortgage) int {
	elapsed := int(time.Since(m.CreatedAt).Hours() / (24 * 365))
	remaining := m.TermYears - elapsed
	if remaining < 1 {
		remaining = 1
	}
	return remaining
}

// optimizationFor seeds a loan with the ROI of the fixed reference payment so
// all loans are ranked on equal footing.
func optimizationFor(id string, annualRate float64, years int) finance.MortgageOptimization {
	fv := finance.PaymentFutureValue(referencePayment, annualRate, years)
	return finance.MortgageOptimization{
		ID:                 id,
		InterestRate:       annualRate,
		YearsRemaining:     years,
		FutureValue:        fv,
		ReturnOnInvestment: (fv - referencePayment) / referencePayment * 100,
	}
}

func requestFor(m core.Mortgage, sc core.Scenario) ScheduleRequest {
	return ScheduleRequest{
		Principal:     m.Principal,
		AnnualRate:    m.AnnualRate,
		TermYears:     m.TermYears,
		Strategy:      sc.Strategy,
		ExtraMonthly:  sc.ExtraMonthly,
		LumpSum:       sc.LumpSum,
		AnnualLumpSum: sc.AnnualLumpSum,
	}
}

func computeSchedule(req ScheduleRequest) ScheduleResult {
	var schedule []finance.YearlyAmortization

	strategy := req.Strategy
	if strategy == "" {
		strategy = core.StrategyStandard
	}

	switch strategy {
	case core.StrategyExtraMonthly:
		schedule = finance.ScheduleWithExtraPayment(req.Principal, req.AnnualRate, req.TermYears, req.ExtraMonthly)
	case core.StrategyLumpSum:
		schedule = finance.ScheduleWithLumpSum(req.Principal, req.AnnualRate, req.TermYears, req.LumpSum)
	case core.StrategyBiWeekly:
		schedule = finance.ScheduleWithBiWeekly(req.Principal, req.AnnualRate, req.TermYears)
	case core.StrategyAnnualLumpSum:
		schedule = finance.ScheduleWithAnnualLumpSum(req.Principal, req.AnnualRate, req.TermYears, req.AnnualLumpSum)
	default:
		schedule = finance.Schedule(req.Principal, req.AnnualRate, req.TermYears)
	}

	return ScheduleResult{
		Strategy:       strategy,
		MonthlyPayment: finance.MonthlyPayment(req.Principal, req.AnnualRate, req.TermYears),
		PayoffYears:    len(schedule),
		TotalInterest:  finance.TotalInterest(schedule),
		Schedule:       schedule,
	}
}

func scheduleCacheKey(req ScheduleRequest) string {
	strategy := req.Strategy
	if strategy == "" {
		strategy = core.StrategyStandard
	}
	return fmt.Sprintf("schedule:%g:%s:%d:%s:%g:%g:%g",
		req.Principal, core.FormatRate(req.AnnualRate), req.TermYears,
		strategy, req.ExtraMonthly, req.LumpSum, req.AnnualLumpSum)
}

func (p *PlannerService) cacheGet(ctx context.Context, key string) (string, bool) {
	if p.cache == nil {
		return "", false
	}
	return p.cache.Get(ctx, key)
}

func (p *PlannerService) cachePut(ctx context.Context, key string, result ScheduleResult) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode result for cache", "key", key, "error", err)
		return
	}
	p.cache.Set(ctx, key, string(data))
}
