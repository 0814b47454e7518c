package http

import (
	"net/http"

	"mortgages/internal/core"
)

// mortgageRequest is the write payload for mortgages. The rate may arrive as
// a number or a string with either decimal separator.
type mortgageRequest struct {
	Name       string    `json:"name"`
	Principal  float64   `json:"principal"`
	AnnualRate rateField `json:"annualRate"`
	TermYears  int       `json:"termYears"`
}

func (req mortgageRequest) toMortgage(id int64) core.Mortgage {
	return core.Mortgage{
		ID:         id,
		Name:       req.Name,
		Principal:  req.Principal,
		AnnualRate: float64(req.AnnualRate),
		TermYears:  req.TermYears,
	}
}

func (s *Server) handleListMortgages(w http.ResponseWriter, r *http.Request) {
	mortgages, err := s.mortgages.ListMortgages(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if mortgages == nil {
		mortgages = []core.Mortgage{}
	}
	writeJSON(w, http.StatusOK, mortgages)
}

func (s *Server) handleCreateMortgage(w http.ResponseWriter, r *http.Request) {
	var req mortgageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	created, err := s.mortgages.CreateMortgage(r.Context(), req.toMortgage(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetMortgage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	m, err := s.mortgages.GetMortgage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMortgage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var req mortgageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	updated, err := s.mortgages.UpdateMortgage(r.Context(), req.toMortgage(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMortgage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.mortgages.DeleteMortgage(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
