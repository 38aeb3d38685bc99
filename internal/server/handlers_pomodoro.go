package server

import (
	"net/http"

	"github.com/ogulcanaydogan/focusboard/pkg/gateway"
)

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var body gateway.SessionInput
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.gateway.CompleteSession(r.Context(), userID(r.Context()), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	weeks, err := intParam(r, "weeks", 4, 1, 52)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	heatmap, err := s.engine.ComputeProductivityHeatmap(r.Context(), userID(r.Context()), weeks)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, heatmap)
}

func (s *Server) handleSyncTasks(w http.ResponseWriter, r *http.Request) {
	res, err := s.gateway.SyncTasks(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
