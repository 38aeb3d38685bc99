package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/integrations"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// SessionInput describes a finished pomodoro interval.
type SessionInput struct {
	Mode             string     `json:"mode"`
	Category         string     `json:"category"`
	DurationMinutes  int        `json:"durationMinutes"`
	CompletionStatus string     `json:"completionStatus"`
	StartedAt        time.Time  `json:"startedAt"`
	EndedAt          *time.Time `json:"endedAt"`
}

func (in SessionInput) validate() error {
	switch in.Mode {
	case model.ModeWork, model.ModeShortBreak, model.ModeLongBreak:
	default:
		return model.Errorf(model.ErrValidation, "invalid mode %q", in.Mode)
	}
	switch in.CompletionStatus {
	case model.StatusCompleted, model.StatusInterrupted:
	default:
		return model.Errorf(model.ErrValidation, "invalid completionStatus %q", in.CompletionStatus)
	}
	if in.DurationMinutes <= 0 || in.DurationMinutes > 24*60 {
		return model.Errorf(model.ErrValidation, "durationMinutes must be between 1 and 1440")
	}
	if in.StartedAt.IsZero() {
		return model.Errorf(model.ErrValidation, "startedAt is required")
	}
	if in.EndedAt != nil && in.EndedAt.Before(in.StartedAt) {
		return model.Errorf(model.ErrValidation, "endedAt is before startedAt")
	}
	return nil
}

// CompleteSession persists the session, then mirrors completed work
// sessions to the calendar. Calendar failures leave CalendarEventID nil.
func (g *Gateway) CompleteSession(ctx context.Context, userID string, in SessionInput) (*model.PomodoroSession, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s := &model.PomodoroSession{
		UserID:           userID,
		Mode:             in.Mode,
		Category:         in.Category,
		DurationMinutes:  in.DurationMinutes,
		CompletionStatus: in.CompletionStatus,
		StartedAt:        in.StartedAt,
		EndedAt:          in.EndedAt,
	}
	if err := g.store.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	cal, ok := g.integrations.Calendar()
	if !ok || s.Mode != model.ModeWork || s.CompletionStatus != model.StatusCompleted {
		return s, nil
	}

	var eventID string
	synced := g.BestEffort(ctx, "calendar", func(ctx context.Context) error {
		if _, err := g.ledger.IncrementUsage(ctx, userID, model.APICalendar); err != nil {
			return err
		}
		id, err := cal.CreateEvent(ctx, sessionEvent(s))
		if err != nil {
			return err
		}
		eventID = id
		// The event exists upstream; failing to persist its id must not
		// drop it from the response.
		if err := g.store.SetSessionCalendarEvent(ctx, userID, s.ID, id); err != nil {
			g.logger.Warn("save calendar event id",
				"session_id", s.ID,
				"event_id", id,
				"error", err,
			)
		}
		return nil
	})
	if synced {
		s.CalendarEventID = &eventID
	}
	return s, nil
}

func sessionEvent(s *model.PomodoroSession) integrations.CalendarEvent {
	end := s.StartedAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	summary := "Pomodoro"
	if s.Category != "" {
		summary = "Pomodoro: " + s.Category
	}
	return integrations.CalendarEvent{
		Summary:     summary,
		Description: fmt.Sprintf("%d minute focus session", s.DurationMinutes),
		Start:       s.StartedAt,
		End:         end,
	}
}
