// Package attendance records per-day clock-in and clock-out times.
package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// Store is the persistence the service needs.
type Store interface {
	CreateWorkLocation(ctx context.Context, loc *model.WorkLocation) error
	GetWorkLocation(ctx context.Context, userID, id string) (*model.WorkLocation, error)
	ListWorkLocations(ctx context.Context, userID string) ([]model.WorkLocation, error)
	DeleteWorkLocation(ctx context.Context, userID, id string) error

	CreateAttendance(ctx context.Context, rec *model.AttendanceRecord) error
	GetAttendance(ctx context.Context, userID, id string) (*model.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, rec *model.AttendanceRecord) error
	DeleteAttendance(ctx context.Context, userID, id string) error
}

// Service manages attendance records and work locations. Records belonging
// to another user are reported as not found.
type Service struct {
	store  Store
	loc    *time.Location
	logger *slog.Logger
}

// NewService creates an attendance service. Calendar days are taken in loc.
func NewService(store Store, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, loc: loc, logger: logger}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	WorkLocationID *string    `json:"workLocationId"`
	Date           *string    `json:"date"`
	ClockIn        *time.Time `json:"clockIn"`
	ClockOut       *time.Time `json:"clockOut"`
	Note           *string    `json:"note"`
}

// ClockIn creates the record for the calendar day of at.
func (s *Service) ClockIn(ctx context.Context, userID, workLocationID string, at time.Time, note string) (*model.AttendanceRecord, error) {
	if workLocationID == "" {
		return nil, model.Errorf(model.ErrValidation, "workLocationId is required")
	}
	if at.IsZero() {
		return nil, model.Errorf(model.ErrValidation, "clockIn time is required")
	}
	if _, err := s.store.GetWorkLocation(ctx, userID, workLocationID); err != nil {
		return nil, err
	}

	in := at.UTC()
	rec := &model.AttendanceRecord{
		UserID:         userID,
		WorkLocationID: workLocationID,
		Date:           model.TruncateDay(at, s.loc),
		ClockIn:        &in,
		Note:           note,
	}
	if err := s.store.CreateAttendance(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("clocked in", "user_id", userID, "date", rec.Date.Format(time.DateOnly))
	return rec, nil
}

// ClockOut sets the clock-out time and derives the worked minutes.
func (s *Service) ClockOut(ctx context.Context, userID, id string, at time.Time) (*model.AttendanceRecord, error) {
	if at.IsZero() {
		return nil, model.Errorf(model.ErrValidation, "clockOut time is required")
	}
	return s.Update(ctx, userID, id, Patch{ClockOut: &at})
}

// Update applies a partial patch and recomputes workMinutes.
func (s *Service) Update(ctx context.Context, userID, id string, p Patch) (*model.AttendanceRecord, error) {
	rec, err := s.store.GetAttendance(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if p.WorkLocationID != nil && *p.WorkLocationID != rec.WorkLocationID {
		if _, err := s.store.GetWorkLocation(ctx, userID, *p.WorkLocationID); err != nil {
			return nil, err
		}
		rec.WorkLocationID = *p.WorkLocationID
	}
	if p.Date != nil {
		d, err := model.ParseDate(*p.Date, s.loc)
		if err != nil {
			return nil, err
		}
		rec.Date = d
	}
	if p.ClockIn != nil {
		t := p.ClockIn.UTC()
		rec.ClockIn = &t
	}
	if p.ClockOut != nil {
		t := p.ClockOut.UTC()
		rec.ClockOut = &t
	}
	if p.Note != nil {
		rec.Note = strings.TrimSpace(*p.Note)
	}

	if rec.ClockIn != nil && rec.ClockOut != nil && rec.ClockOut.Before(*rec.ClockIn) {
		return nil, model.Errorf(model.ErrValidation, "clockOut is before clockIn")
	}
	rec.WorkMinutes = model.WorkMinutesBetween(rec.ClockIn, rec.ClockOut)

	if err := s.store.UpdateAttendance(ctx, rec); err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	return rec, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteAttendance(ctx, userID, id)
}

// CreateWorkLocation adds a named work location.
func (s *Service) CreateWorkLocation(ctx context.Context, userID, name string) (*model.WorkLocation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.Errorf(model.ErrValidation, "name is required")
	}
	loc := &model.WorkLocation{UserID: userID, Name: name}
	if err := s.store.CreateWorkLocation(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// ListWorkLocations returns the user's work locations.
func (s *Service) ListWorkLocations(ctx context.Context, userID string) ([]model.WorkLocation, error) {
	locs, err := s.store.ListWorkLocations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []model.WorkLocation{}
	}
	return locs, nil
}

// DeleteWorkLocation fails with model.ErrConflict while records reference it.
func (s *Service) DeleteWorkLocation(ctx context.Context, userID, id string) error {
	return s.store.DeleteWorkLocation(ctx, userID, id)
}
