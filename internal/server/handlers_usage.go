package server

import (
	"net/http"

	"github.com/ogulcanaydogan/focusboard/pkg/ledger"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

type usageResponse struct {
	Month   string                            `json:"month"`
	Current map[model.APIType]model.UsageInfo `json:"current"`
	History []model.UsageHistoryEntry         `json:"history"`
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	months, err := intParam(r, "months", 6, 1, 24)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	uid := userID(r.Context())
	current, err := s.ledger.GetAllUsage(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	history, err := s.ledger.History(r.Context(), uid, months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usageResponse{
		Month:   s.ledger.CurrentMonth(),
		Current: current,
		History: history,
	})
}

func (s *Server) handleUpdateLimit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Limit *int64 `json:"limit"`
	}
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Limit == nil {
		s.writeError(w, r, model.Errorf(model.ErrValidation, "limit is required"))
		return
	}
	if err := ledger.ValidateLimit(*body.Limit); err != nil {
		s.writeError(w, r, err)
		return
	}

	uid := userID(r.Context())
	if err := s.ledger.UpdateAllLimits(r.Context(), uid, *body.Limit); err != nil {
		s.writeError(w, r, err)
		return
	}
	current, err := s.ledger.GetAllUsage(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"limit": *body.Limit, "current": current})
}
