package http

import (
	"net/http"

	"mortgages/internal/core"
)

type scenarioRequest struct {
	Name          string        `json:"name"`
	Strategy      core.Strategy `json:"strategy"`
	ExtraMonthly  float64       `json:"extraMonthly"`
	LumpSum       float64       `json:"lumpSum"`
	AnnualLumpSum float64       `json:"annualLumpSum"`
}

func (req scenarioRequest) toScenario(id, mortgageID int64) core.Scenario {
	return core.Scenario{
		ID:            id,
		MortgageID:    mortgageID,
		Name:          req.Name,
		Strategy:      req.Strategy,
		ExtraMonthly:  req.ExtraMonthly,
		LumpSum:       req.LumpSum,
		AnnualLumpSum: req.AnnualLumpSum,
	}
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	mortgageID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	scenarios, err := s.mortgages.ListScenarios(r.Context(), mortgageID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if scenarios == nil {
		scenarios = []core.Scenario{}
	}
	writeJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	mortgageID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var req scenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	created, err := s.mortgages.CreateScenario(r.Context(), req.toScenario(0, mortgageID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sc, err := s.mortgages.GetScenario(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	existing, err := s.mortgages.GetScenario(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req scenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	updated, err := s.mortgages.UpdateScenario(r.Context(), req.toScenario(id, existing.MortgageID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.mortgages.DeleteScenario(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
