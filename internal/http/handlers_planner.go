package http

import (
	"net/http"
	"strconv"
	"strings"

	"mortgages/internal/finance"
	"mortgages/internal/services"
)

func (s *Server) handleMortgageSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.planner.ScheduleForMortgage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	mortgageID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	scenarioID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("scenario")), 10, 64)
	if err != nil || scenarioID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing or invalid scenario parameter"})
		return
	}

	cmp, err := s.planner.Compare(r.Context(), mortgageID, scenarioID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleStoredDistribution(w http.ResponseWriter, r *http.Request) {
	budget, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("budget")), 64)
	if err != nil || budget <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "budget must be a positive number"})
		return
	}

	allocations, err := s.planner.DistributionForStored(r.Context(), budget)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, distributionResponse{Budget: budget, Allocations: allocations})
}

// calculateScheduleRequest mirrors services.ScheduleRequest with a flexible
// rate field for the stateless calculation endpoint.
type calculateScheduleRequest struct {
	Principal     float64   `json:"principal"`
	AnnualRate    rateField `json:"annualRate"`
	TermYears     int       `json:"termYears"`
	Strategy      string    `json:"strategy"`
	ExtraMonthly  float64   `json:"extraMonthly"`
	LumpSum       float64   `json:"lumpSum"`
	AnnualLumpSum float64   `json:"annualLumpSum"`
}

func (s *Server) handleCalculateSchedule(w http.ResponseWriter, r *http.Request) {
	var req calculateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	svcReq := services.ScheduleRequest{
		Principal:     req.Principal,
		AnnualRate:    float64(req.AnnualRate),
		TermYears:     req.TermYears,
		Strategy:      strategyFromString(req.Strategy),
		ExtraMonthly:  req.ExtraMonthly,
		LumpSum:       req.LumpSum,
		AnnualLumpSum: req.AnnualLumpSum,
	}

	result, err := s.planner.ComputeSchedule(r.Context(), svcReq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type calculateDistributionRequest struct {
	Budget float64 `json:"budget"`
	Loans  []struct {
		ID             string    `json:"id"`
		AnnualRate     rateField `json:"annualRate"`
		YearsRemaining int       `json:"yearsRemaining"`
	} `json:"loans"`
}

type distributionResponse struct {
	Budget      float64              `json:"budget"`
	Allocations []finance.Allocation `json:"allocations"`
}

func (s *Server) handleCalculateDistribution(w http.ResponseWriter, r *http.Request) {
	var req calculateDistributionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	svcReq := services.DistributionRequest{Budget: req.Budget}
	for _, loan := range req.Loans {
		svcReq.Loans = append(svcReq.Loans, services.LoanInput{
			ID:             loan.ID,
			AnnualRate:     float64(loan.AnnualRate),
			YearsRemaining: loan.YearsRemaining,
		})
	}
	if err := svcReq.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	allocations, err := s.planner.Distribution(r.Context(), svcReq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, distributionResponse{Budget: req.Budget, Allocations: allocations})
}
