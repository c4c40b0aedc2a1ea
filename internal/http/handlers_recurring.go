package http

import "net/http"

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rs, err := req.toRecurring()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.svc.Recurring.Create(r.Context(), pathID(r), rs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRecurringResponse(created))
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Recurring.List(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]recurringResponse, 0, len(list))
	for _, rs := range list {
		out = append(out, newRecurringResponse(rs))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Recurring.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
