package storage_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
	"github.com/ogulcanaydogan/focusboard/pkg/storage"
)

func newTestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_EnsureUsage_CreatesOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.EnsureUsage(ctx, "u1", model.APIVision, "2026-10", 900)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Count)
	assert.Equal(t, int64(900), first.Limit)

	second, err := db.EnsureUsage(ctx, "u1", model.APIVision, "2026-10", 50)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(900), second.Limit, "existing row keeps its limit")
}

func TestSQLite_IncrementUsageIfBelowLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.EnsureUsage(ctx, "u1", model.APITasks, "2026-10", 2)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := db.IncrementUsageIfBelowLimit(ctx, "u1", model.APITasks, "2026-10")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := db.IncrementUsageIfBelowLimit(ctx, "u1", model.APITasks, "2026-10")
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err := db.EnsureUsage(ctx, "u1", model.APITasks, "2026-10", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Count)
}

func TestSQLite_IncrementUsageIfBelowLimit_Concurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.EnsureUsage(ctx, "u1", model.APICalendar, "2026-10", 5)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = db.IncrementUsageIfBelowLimit(ctx, "u1", model.APICalendar, "2026-10")
		}()
	}
	wg.Wait()

	rec, err := db.EnsureUsage(ctx, "u1", model.APICalendar, "2026-10", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.Count)
}

func TestSQLite_SetUsageLimit_UpsertsAndResets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetUsageLimit(ctx, "u1", model.APIGmail, "2026-10", 100))
	rec, err := db.EnsureUsage(ctx, "u1", model.APIGmail, "2026-10", 900)
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.Limit)
	assert.Equal(t, int64(0), rec.Count)

	_, err = db.IncrementUsageIfBelowLimit(ctx, "u1", model.APIGmail, "2026-10")
	require.NoError(t, err)
	require.NoError(t, db.SetUsageLimit(ctx, "u1", model.APIGmail, "2026-10", 300))

	rec, err = db.EnsureUsage(ctx, "u1", model.APIGmail, "2026-10", 900)
	require.NoError(t, err)
	assert.Equal(t, int64(300), rec.Limit)
	assert.Equal(t, int64(1), rec.Count)

	require.NoError(t, db.ResetUsageCount(ctx, "u1", model.APIGmail, "2026-10"))
	rec, err = db.EnsureUsage(ctx, "u1", model.APIGmail, "2026-10", 900)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Count)
	assert.Equal(t, int64(300), rec.Limit)
}

func TestSQLite_ListUsageHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, month := range []string{"2026-06", "2026-08", "2026-10"} {
		_, err := db.EnsureUsage(ctx, "u1", model.APIVision, month, 900)
		require.NoError(t, err)
	}
	_, err := db.EnsureUsage(ctx, "other", model.APIVision, "2026-10", 900)
	require.NoError(t, err)

	history, err := db.ListUsageHistory(ctx, "u1", "2026-07")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2026-10", history[0].Month)
	assert.Equal(t, "2026-08", history[1].Month)
}

func TestSQLite_Attendance_CRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	loc := &model.WorkLocation{UserID: "u1", Name: "Office"}
	require.NoError(t, db.CreateWorkLocation(ctx, loc))

	in := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	out := in.Add(9 * time.Hour)
	rec := &model.AttendanceRecord{
		UserID:         "u1",
		WorkLocationID: loc.ID,
		Date:           time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		ClockIn:        &in,
		ClockOut:       &out,
		WorkMinutes:    model.WorkMinutesBetween(&in, &out),
	}
	require.NoError(t, db.CreateAttendance(ctx, rec))

	got, err := db.GetAttendance(ctx, "u1", rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.WorkMinutes)
	assert.Equal(t, 540, *got.WorkMinutes)
	assert.True(t, got.ClockIn.Equal(in))
	assert.Equal(t, 1, got.Date.Day())

	dup := &model.AttendanceRecord{UserID: "u1", WorkLocationID: loc.ID, Date: rec.Date}
	err = db.CreateAttendance(ctx, dup)
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = db.GetAttendance(ctx, "someone-else", rec.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	got.Note = "remote afternoon"
	got.ClockOut = nil
	got.WorkMinutes = nil
	require.NoError(t, db.UpdateAttendance(ctx, got))

	got, err = db.GetAttendance(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "remote afternoon", got.Note)
	assert.Nil(t, got.ClockOut)
	assert.Nil(t, got.WorkMinutes)

	require.NoError(t, db.DeleteAttendance(ctx, "u1", rec.ID))
	assert.ErrorIs(t, db.DeleteAttendance(ctx, "u1", rec.ID), model.ErrNotFound)
}

func TestSQLite_DeleteWorkLocation_Referenced(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	loc := &model.WorkLocation{UserID: "u1", Name: "Home"}
	require.NoError(t, db.CreateWorkLocation(ctx, loc))
	rec := &model.AttendanceRecord{UserID: "u1", WorkLocationID: loc.ID, Date: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.CreateAttendance(ctx, rec))

	assert.ErrorIs(t, db.DeleteWorkLocation(ctx, "u1", loc.ID), model.ErrConflict)

	require.NoError(t, db.DeleteAttendance(ctx, "u1", rec.ID))
	require.NoError(t, db.DeleteWorkLocation(ctx, "u1", loc.ID))

	locs, err := db.ListWorkLocations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestSQLite_ListAttendance_Range(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	loc := &model.WorkLocation{UserID: "u1", Name: "Office"}
	require.NoError(t, db.CreateWorkLocation(ctx, loc))
	for _, d := range []time.Time{
		time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, db.CreateAttendance(ctx, &model.AttendanceRecord{UserID: "u1", WorkLocationID: loc.ID, Date: d}))
	}

	start, end := model.MonthBounds(2026, time.October, time.UTC)
	records, err := db.ListAttendance(ctx, "u1", start, end)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Date.Day())
	assert.Equal(t, 31, records[1].Date.Day())
}

func TestSQLite_Transactions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	txs := []*model.Transaction{
		{UserID: "u1", Date: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), Category: model.CategoryIncome, Amount: 1},
		{UserID: "u1", Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), Category: model.CategoryIncome, Amount: 100000},
		{UserID: "u1", Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), Category: model.CategoryExpense, Amount: 2500},
		{UserID: "u2", Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), Category: model.CategoryExpense, Amount: 7},
	}
	for _, tx := range txs {
		require.NoError(t, db.CreateTransaction(ctx, tx))
	}

	start, end := model.YearBounds(2026, time.UTC)
	got, err := db.ListTransactions(ctx, "u1", start, end)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100000), got[0].Amount)
	assert.Equal(t, time.March, got[1].Date.Month())
}

func TestSQLite_Receipts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	day := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	withOCR := &model.Receipt{
		UserID:    "u1",
		ImagePath: "u1/receipt-1.jpg",
		OCR:       &model.OcrData{StoreName: "Lawson", Date: &day, TotalAmount: 1080, TaxAmount: 80},
	}
	require.NoError(t, db.CreateReceipt(ctx, withOCR))
	require.NoError(t, db.CreateReceipt(ctx, &model.Receipt{UserID: "u1", ImagePath: "u1/receipt-2.jpg"}))

	receipts, err := db.ListReceipts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	var found bool
	for _, r := range receipts {
		if r.ID == withOCR.ID {
			found = true
			require.NotNil(t, r.OCR)
			assert.Equal(t, "Lawson", r.OCR.StoreName)
			assert.Equal(t, int64(1080), r.OCR.TotalAmount)
			require.NotNil(t, r.OCR.Date)
			assert.Equal(t, 5, r.OCR.Date.Day())
		} else {
			assert.Nil(t, r.OCR)
		}
		assert.Equal(t, r.ImagePath, r.ImageURL)
	}
	assert.True(t, found)
}

func TestSQLite_Sessions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	old := &model.PomodoroSession{UserID: "u1", Mode: model.ModeWork, DurationMinutes: 25, CompletionStatus: model.StatusCompleted, StartedAt: now.AddDate(0, 0, -60)}
	recent := &model.PomodoroSession{UserID: "u1", Mode: model.ModeWork, DurationMinutes: 25, CompletionStatus: model.StatusCompleted, StartedAt: now.Add(-time.Hour)}
	require.NoError(t, db.CreateSession(ctx, old))
	require.NoError(t, db.CreateSession(ctx, recent))

	require.NoError(t, db.SetSessionCalendarEvent(ctx, "u1", recent.ID, "evt-1"))
	assert.ErrorIs(t, db.SetSessionCalendarEvent(ctx, "u2", recent.ID, "evt-2"), model.ErrNotFound)

	sessions, err := db.ListSessions(ctx, "u1", now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, recent.ID, sessions[0].ID)
	require.NotNil(t, sessions[0].CalendarEventID)
	assert.Equal(t, "evt-1", *sessions[0].CalendarEventID)
	assert.True(t, sessions[0].StartedAt.Equal(recent.StartedAt))
}

func TestSQLite_AccountingSettings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := db.GetAccountingSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.SetAccountingSettings(ctx, &model.AccountingSettings{UserID: "u1", BlueReturnDeduction: 100000, DependentIncomeLimit: 480000}))
	require.NoError(t, db.SetAccountingSettings(ctx, &model.AccountingSettings{UserID: "u1", BlueReturnDeduction: 550000, DependentIncomeLimit: 480000}))

	got, err = db.GetAccountingSettings(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(550000), got.BlueReturnDeduction)
}
