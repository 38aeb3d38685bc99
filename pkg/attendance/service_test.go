package attendance_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/focusboard/pkg/attendance"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
	"github.com/ogulcanaydogan/focusboard/pkg/storage"
)

var jst = time.FixedZone("JST", 9*3600)

func newTestService(t *testing.T) (*attendance.Service, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return attendance.NewService(store, jst, logger), store
}

func TestClockInOut(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	office, err := svc.CreateWorkLocation(ctx, "u1", " Office ")
	require.NoError(t, err)
	assert.Equal(t, "Office", office.Name)

	// 2024-05-09 23:30 UTC is already 2024-05-10 in Tokyo.
	in := time.Date(2024, 5, 9, 23, 30, 0, 0, time.UTC)
	rec, err := svc.ClockIn(ctx, "u1", office.ID, in, "")
	require.NoError(t, err)
	assert.Nil(t, rec.WorkMinutes)

	out := in.Add(8*time.Hour + 59*time.Minute + 59*time.Second)
	rec, err = svc.ClockOut(ctx, "u1", rec.ID, out)
	require.NoError(t, err)
	require.NotNil(t, rec.WorkMinutes)
	assert.Equal(t, 539, *rec.WorkMinutes)

	from := time.Date(2024, 5, 10, 0, 0, 0, 0, jst)
	records, err := store.ListAttendance(ctx, "u1", from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-05-10", records[0].Date.Format(time.DateOnly))
}

func TestClockIn_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	office, err := svc.CreateWorkLocation(ctx, "u1", "Office")
	require.NoError(t, err)

	at := time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC)
	_, err = svc.ClockIn(ctx, "u1", office.ID, at, "")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "u1", office.ID, at.Add(2*time.Hour), "")
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestClockIn_ForeignLocation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	office, err := svc.CreateWorkLocation(ctx, "u2", "Office")
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, "u1", office.ID, time.Now(), "")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.ClockIn(ctx, "u1", "", time.Now(), "")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	office, err := svc.CreateWorkLocation(ctx, "u1", "Office")
	require.NoError(t, err)
	home, err := svc.CreateWorkLocation(ctx, "u1", "Home")
	require.NoError(t, err)

	in := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	rec, err := svc.ClockIn(ctx, "u1", office.ID, in, "")
	require.NoError(t, err)

	out := in.Add(9 * time.Hour)
	note := "remote afternoon"
	rec, err = svc.Update(ctx, "u1", rec.ID, attendance.Patch{
		WorkLocationID: &home.ID,
		ClockOut:       &out,
		Note:           &note,
	})
	require.NoError(t, err)
	assert.Equal(t, home.ID, rec.WorkLocationID)
	assert.Equal(t, 540, *rec.WorkMinutes)
	assert.Equal(t, note, rec.Note)

	early := in.Add(-time.Hour)
	_, err = svc.Update(ctx, "u1", rec.ID, attendance.Patch{ClockOut: &early})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Update(ctx, "u2", rec.ID, attendance.Patch{Note: &note})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteAndLocationConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	office, err := svc.CreateWorkLocation(ctx, "u1", "Office")
	require.NoError(t, err)
	rec, err := svc.ClockIn(ctx, "u1", office.ID, time.Now(), "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteWorkLocation(ctx, "u1", office.ID), model.ErrConflict)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", rec.ID), model.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", rec.ID))
	require.NoError(t, svc.DeleteWorkLocation(ctx, "u1", office.ID))

	locs, err := svc.ListWorkLocations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, locs)
	assert.NotNil(t, locs)
}
