package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

func (s *SQLite) CreateSession(ctx context.Context, ps *model.PomodoroSession) error {
	if ps.ID == "" {
		ps.ID = uuid.New().String()
	}
	if ps.CreatedAt.IsZero() {
		ps.CreatedAt = time.Now().UTC()
	}
	var eventID any
	if ps.CalendarEventID != nil {
		eventID = *ps.CalendarEventID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pomodoro_sessions
		   (id, user_id, mode, category, duration_minutes, completion_status, started_at, ended_at, calendar_event_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ps.ID, ps.UserID, ps.Mode, ps.Category, ps.DurationMinutes, ps.CompletionStatus,
		ps.StartedAt.UTC(), nullTime(ps.EndedAt), eventID, ps.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pomodoro session: %w", err)
	}
	return nil
}

func (s *SQLite) SetSessionCalendarEvent(ctx context.Context, userID, id, eventID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE pomodoro_sessions SET calendar_event_id = ? WHERE id = ? AND user_id = ?`,
		eventID, id, userID,
	)
	if err != nil {
		return fmt.Errorf("set session calendar event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.Errorf(model.ErrNotFound, "pomodoro session %q not found", id)
	}
	return nil
}

func (s *SQLite) ListSessions(ctx context.Context, userID string, since time.Time) ([]model.PomodoroSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, mode, category, duration_minutes, completion_status, started_at, ended_at, calendar_event_id, created_at
		 FROM pomodoro_sessions
		 WHERE user_id = ? AND started_at >= ?
		 ORDER BY started_at`,
		userID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list pomodoro sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.PomodoroSession
	for rows.Next() {
		var (
			ps      model.PomodoroSession
			ended   sql.NullTime
			eventID sql.NullString
		)
		if err := rows.Scan(&ps.ID, &ps.UserID, &ps.Mode, &ps.Category, &ps.DurationMinutes,
			&ps.CompletionStatus, &ps.StartedAt, &ended, &eventID, &ps.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pomodoro session row: %w", err)
		}
		ps.StartedAt = ps.StartedAt.UTC()
		ps.EndedAt = timePtr(ended)
		if eventID.Valid {
			id := eventID.String
			ps.CalendarEventID = &id
		}
		sessions = append(sessions, ps)
	}
	return sessions, rows.Err()
}
