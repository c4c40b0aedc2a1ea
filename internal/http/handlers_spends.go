package http

import (
	"net/http"

	"spendwise/internal/log"
)

func (s *Server) handleCreateSpend(w http.ResponseWriter, r *http.Request) {
	var req createSpendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := req.toSpend(s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.svc.Spends.Create(r.Context(), pathID(r), sp)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Spend created",
		log.FieldAccountID, created.AccountID,
		log.FieldSpendID, created.ID,
		log.FieldAmount, formatAmount(created.Amount),
		log.FieldCategory, created.Category)
	writeJSON(w, http.StatusCreated, newSpendResponse(created))
}

func (s *Server) handleGetSpend(w http.ResponseWriter, r *http.Request) {
	sp, err := s.svc.Spends.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSpendResponse(sp))
}

func (s *Server) handleUpdateSpend(w http.ResponseWriter, r *http.Request) {
	var req updateSpendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.svc.Spends.Update(r.Context(), pathID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSpendResponse(updated))
}

func (s *Server) handleDeleteSpend(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.svc.Spends.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Spend deleted", log.FieldSpendID, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
