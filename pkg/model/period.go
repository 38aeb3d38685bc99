package model

import (
	"fmt"
	"math"
	"time"
)

// MonthLayout is the YYYY-MM month key format.
const MonthLayout = "2006-01"

// MonthKey returns the YYYY-MM key for t in t's location.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ShiftMonth returns the key n months before (negative) or after key.
func ShiftMonth(key string, n int) (string, error) {
	t, err := time.Parse(MonthLayout, key)
	if err != nil {
		return "", Errorf(ErrValidation, "invalid month key %q", key)
	}
	return MonthKey(t.AddDate(0, n, 0)), nil
}

// MonthBounds returns [start, end) of the given calendar month in loc.
func MonthBounds(year int, month time.Month, loc *time.Location) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// YearBounds returns [start, end) of the given calendar year in loc.
func YearBounds(year int, loc *time.Location) (start, end time.Time) {
	start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end = start.AddDate(1, 0, 0)
	return start, end
}

// TruncateDay drops the time of day of t in loc.
func TruncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, Errorf(ErrValidation, "invalid date %q", s)
	}
	return t, nil
}

// RoundHalfUp rounds to the nearest integer with halves going towards +Inf.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundTo rounds x half-up to the given number of decimals.
func RoundTo(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return RoundHalfUp(x*p) / p
}

// FormatYen renders an integer yen amount with thousands separators.
func FormatYen(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + "¥" + s
}
