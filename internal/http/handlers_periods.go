package http

import (
	"net/http"

	"spendwise/internal/log"
)

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	part, err := s.svc.Periods.List(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPeriodListResponse(part, now))
}

func (s *Server) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req createPeriodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.svc.Periods.Create(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Period created",
		log.FieldAccountID, p.AccountID,
		log.FieldPeriodID, p.ID)
	writeJSON(w, http.StatusCreated, newPeriodResponse(p, s.now()))
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Periods.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPeriodResponse(p, s.now()))
}

// handleDeletePeriod answers 409 while the period is still open.
func (s *Server) handleDeletePeriod(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.svc.Periods.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Period deleted", log.FieldPeriodID, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handlePeriodInsights(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	rep, err := s.svc.Insights.ForPeriod(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(rep, now))
}
