package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ogulcanaydogan/focusboard/pkg/attendance"
)

func (s *Server) handleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	uid, err := ownerParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year, err := requiredIntParam(r, "year", 1900, 9999)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	month, err := requiredIntParam(r, "month", 1, 12)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.engine.ComputeAttendanceSummary(r.Context(), uid, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleClockIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkLocationID string     `json:"workLocationId"`
		ClockIn        *time.Time `json:"clockIn"`
		Note           string     `json:"note"`
	}
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	at := time.Now()
	if body.ClockIn != nil {
		at = *body.ClockIn
	}

	rec, err := s.attendance.ClockIn(r.Context(), userID(r.Context()), body.WorkLocationID, at, body.Note)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateAttendance(w http.ResponseWriter, r *http.Request) {
	var patch attendance.Patch
	if err := s.decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.attendance.Update(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := s.attendance.Delete(r.Context(), userID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWorkLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := s.attendance.ListWorkLocations(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locs)
}

func (s *Server) handleCreateWorkLocation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	loc, err := s.attendance.CreateWorkLocation(r.Context(), userID(r.Context()), body.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (s *Server) handleDeleteWorkLocation(w http.ResponseWriter, r *http.Request) {
	err := s.attendance.DeleteWorkLocation(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
