package model_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

func TestNewUsageInfo(t *testing.T) {
	info := model.NewUsageInfo(45, 900)
	assert.Equal(t, int64(855), info.Remaining)
	assert.False(t, info.IsOverLimit)
	assert.Equal(t, 5, info.Percentage)

	info = model.NewUsageInfo(900, 900)
	assert.True(t, info.IsOverLimit)
	assert.Equal(t, int64(0), info.Remaining)
	assert.Equal(t, 100, info.Percentage)
}

func TestNewUsageInfo_RoundsHalfUpAndCaps(t *testing.T) {
	assert.Equal(t, 1, model.NewUsageInfo(1, 200).Percentage)
	assert.Equal(t, 67, model.NewUsageInfo(2, 3).Percentage)
	assert.Equal(t, 100, model.NewUsageInfo(15, 10).Percentage)
}

func TestNewUsageInfo_ZeroLimit(t *testing.T) {
	info := model.NewUsageInfo(0, 0)
	assert.True(t, info.IsOverLimit)
	assert.Equal(t, 100, info.Percentage)
	assert.Equal(t, int64(0), info.Remaining)
}

func TestParseAPIType(t *testing.T) {
	for _, name := range []string{"vision", "calendar", "tasks", "gmail"} {
		got, err := model.ParseAPIType(name)
		require.NoError(t, err)
		assert.Equal(t, model.APIType(name), got)
	}

	_, err := model.ParseAPIType("Vision")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestShiftMonth(t *testing.T) {
	got, err := model.ShiftMonth("2024-02", -2)
	require.NoError(t, err)
	assert.Equal(t, "2023-12", got)

	got, err = model.ShiftMonth("2024-12", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-01", got)

	_, err = model.ShiftMonth("2024/12", 1)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestMonthBounds(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	start, end := model.MonthBounds(2024, time.February, tokyo)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, tokyo), start)
	assert.Equal(t, 29*24*time.Hour, end.Sub(start))
}

func TestTruncateDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 20:00 UTC on the 8th is already the 9th in Tokyo.
	got := model.TruncateDay(time.Date(2024, 5, 8, 20, 0, 0, 0, time.UTC), tokyo)
	assert.Equal(t, 9, got.Day())
	assert.Equal(t, 0, got.Hour())
}

func TestParseDate(t *testing.T) {
	d, err := model.ParseDate("2024-05-09", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), d)

	_, err = model.ParseDate("09/05/2024", time.UTC)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 3.0, model.RoundHalfUp(2.5))
	assert.Equal(t, -2.0, model.RoundHalfUp(-2.5))
	assert.Equal(t, 25.0, model.RoundTo(25.0, 1))
	assert.Equal(t, -33.3, model.RoundTo(-33.333, 1))
	assert.Equal(t, 66.7, model.RoundTo(66.666, 1))
}

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "¥0", model.FormatYen(0))
	assert.Equal(t, "¥999", model.FormatYen(999))
	assert.Equal(t, "¥1,030,000", model.FormatYen(1030000))
	assert.Equal(t, "-¥650,000", model.FormatYen(-650000))
}

func TestWorkMinutesBetween(t *testing.T) {
	in := time.Date(2024, 5, 9, 9, 0, 0, 0, time.UTC)
	out := in.Add(8*time.Hour + 59*time.Minute + 59*time.Second)
	got := model.WorkMinutesBetween(&in, &out)
	require.NotNil(t, got)
	assert.Equal(t, 539, *got)

	assert.Nil(t, model.WorkMinutesBetween(&in, nil))
}

func TestErrorKinds(t *testing.T) {
	err := model.Errorf(model.ErrQuotaExceeded, "monthly %s limit reached (%d/%d)", "vision", 900, 900)
	wrapped := fmt.Errorf("upload receipt: %w", err)

	assert.ErrorIs(t, wrapped, model.ErrQuotaExceeded)
	assert.False(t, errors.Is(wrapped, model.ErrValidation))
	assert.Equal(t, "monthly vision limit reached (900/900)", model.Message(wrapped))
	assert.Equal(t, "plain", model.Message(errors.New("plain")))
}
