package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

func (s *SQLite) CreateWorkLocation(ctx context.Context, loc *model.WorkLocation) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_locations (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		loc.ID, loc.UserID, loc.Name, loc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert work location: %w", err)
	}
	return nil
}

func (s *SQLite) GetWorkLocation(ctx context.Context, userID, id string) (*model.WorkLocation, error) {
	var l model.WorkLocation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM work_locations WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.Errorf(model.ErrNotFound, "work location %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get work location: %w", err)
	}
	return &l, nil
}

func (s *SQLite) ListWorkLocations(ctx context.Context, userID string) ([]model.WorkLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM work_locations WHERE user_id = ? ORDER BY created_at, name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list work locations: %w", err)
	}
	defer rows.Close()

	var locs []model.WorkLocation
	for rows.Next() {
		var l model.WorkLocation
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan work location row: %w", err)
		}
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

func (s *SQLite) DeleteWorkLocation(ctx context.Context, userID, id string) error {
	if _, err := s.GetWorkLocation(ctx, userID, id); err != nil {
		return err
	}

	var refs int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_records WHERE work_location_id = ?`, id,
	).Scan(&refs); err != nil {
		return fmt.Errorf("count attendance references: %w", err)
	}
	if refs > 0 {
		return model.Errorf(model.ErrConflict, "work location has %d attendance records", refs)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM work_locations WHERE id = ? AND user_id = ?`, id, userID,
	); err != nil {
		return fmt.Errorf("delete work location: %w", err)
	}
	return nil
}

const attendanceColumns = "id, user_id, work_location_id, day, clock_in, clock_out, work_minutes, note, created_at, updated_at"

func (s *SQLite) CreateAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_records (`+attendanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.WorkLocationID, dayKey(rec.Date),
		nullTime(rec.ClockIn), nullTime(rec.ClockOut), nullInt(rec.WorkMinutes),
		rec.Note, rec.CreatedAt, rec.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return model.Errorf(model.ErrConflict, "attendance record for %s already exists", dayKey(rec.Date))
	}
	if err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

func (s *SQLite) GetAttendance(ctx context.Context, userID, id string) (*model.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	rec, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.Errorf(model.ErrNotFound, "attendance record %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance record: %w", err)
	}
	return rec, nil
}

func (s *SQLite) UpdateAttendance(ctx context.Context, rec *model.AttendanceRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE attendance_records SET
		   work_location_id = ?, day = ?, clock_in = ?, clock_out = ?, work_minutes = ?, note = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		rec.WorkLocationID, dayKey(rec.Date), nullTime(rec.ClockIn), nullTime(rec.ClockOut),
		nullInt(rec.WorkMinutes), rec.Note, rec.UpdatedAt, rec.ID, rec.UserID,
	)
	if isUniqueViolation(err) {
		return model.Errorf(model.ErrConflict, "attendance record for %s already exists", dayKey(rec.Date))
	}
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.Errorf(model.ErrNotFound, "attendance record %q not found", rec.ID)
	}
	return nil
}

func (s *SQLite) DeleteAttendance(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.Errorf(model.ErrNotFound, "attendance record %q not found", id)
	}
	return nil
}

func (s *SQLite) ListAttendance(ctx context.Context, userID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records
		 WHERE user_id = ? AND day >= ? AND day < ?
		 ORDER BY day`,
		userID, dayKey(from), dayKey(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row rowScanner) (*model.AttendanceRecord, error) {
	var (
		rec     model.AttendanceRecord
		day     string
		in, out sql.NullTime
		minutes sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.WorkLocationID, &day, &in, &out, &minutes,
		&rec.Note, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := parseDay(day)
	if err != nil {
		return nil, fmt.Errorf("parse day %q: %w", day, err)
	}
	rec.Date = d
	rec.ClockIn = timePtr(in)
	rec.ClockOut = timePtr(out)
	rec.WorkMinutes = intPtr(minutes)
	return &rec, nil
}
