package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// WeekStats is one week{k} bucket of a month.
type WeekStats struct {
	TotalWorkMinutes int `json:"totalWorkMinutes"`
	WorkDays         int `json:"workDays"`
}

// AttendanceSummary is the monthly attendance view.
type AttendanceSummary struct {
	Year               int                      `json:"year"`
	Month              int                      `json:"month"`
	TotalWorkMinutes   int                      `json:"totalWorkMinutes"`
	TotalWorkDays      int                      `json:"totalWorkDays"`
	AverageWorkMinutes int                      `json:"averageWorkMinutes"`
	TotalWorkHours     float64                  `json:"totalWorkHours"`
	AverageWorkHours   float64                  `json:"averageWorkHours"`
	WeeklyData         map[string]WeekStats     `json:"weeklyData"`
	Records            []model.AttendanceRecord `json:"records"`
}

// WeekKey returns the bucket key for a day of month: week1 holds days 1-7,
// week5 holds 29-31.
func WeekKey(dayOfMonth int) string {
	return fmt.Sprintf("week%d", (dayOfMonth+6)/7)
}

// BuildAttendanceSummary folds one month of records. Every week bucket the
// month spans is present, zero filled.
func BuildAttendanceSummary(year int, month time.Month, records []model.AttendanceRecord) AttendanceSummary {
	days := daysIn(year, month)
	summary := AttendanceSummary{
		Year:       year,
		Month:      int(month),
		WeeklyData: make(map[string]WeekStats, 5),
		Records:    records,
	}
	if summary.Records == nil {
		summary.Records = []model.AttendanceRecord{}
	}
	for d := 1; d <= days; d += 7 {
		summary.WeeklyData[WeekKey(d)] = WeekStats{}
	}

	for _, rec := range records {
		if !rec.Worked() {
			continue
		}
		minutes := 0
		if rec.WorkMinutes != nil {
			minutes = *rec.WorkMinutes
		} else {
			minutes = *model.WorkMinutesBetween(rec.ClockIn, rec.ClockOut)
		}
		summary.TotalWorkMinutes += minutes
		summary.TotalWorkDays++

		key := WeekKey(rec.Date.Day())
		w := summary.WeeklyData[key]
		w.TotalWorkMinutes += minutes
		w.WorkDays++
		summary.WeeklyData[key] = w
	}

	if summary.TotalWorkDays > 0 {
		summary.AverageWorkMinutes = summary.TotalWorkMinutes / summary.TotalWorkDays
	}
	summary.TotalWorkHours = model.RoundTo(float64(summary.TotalWorkMinutes)/60, 1)
	summary.AverageWorkHours = model.RoundTo(float64(summary.AverageWorkMinutes)/60, 1)
	return summary
}

// ComputeAttendanceSummary returns the summary of one calendar month.
func (e *Engine) ComputeAttendanceSummary(ctx context.Context, userID string, year, month int) (AttendanceSummary, error) {
	if err := validateYear(year); err != nil {
		return AttendanceSummary{}, err
	}
	if err := validateMonth(month); err != nil {
		return AttendanceSummary{}, err
	}
	from, to := model.MonthBounds(year, time.Month(month), e.opts.Location)
	records, err := e.source.ListAttendance(ctx, userID, from, to)
	if err != nil {
		return AttendanceSummary{}, fmt.Errorf("list attendance: %w", err)
	}
	return BuildAttendanceSummary(year, time.Month(month), records), nil
}
