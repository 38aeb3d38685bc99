// Package aggregate computes read-only dashboard statistics from persisted
// transactions, attendance records and pomodoro sessions.
package aggregate

import (
	"context"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// Defaults for users without accounting settings. Configuration applies
// them; an explicit zero in Options is honored.
const (
	DefaultBlueReturnDeduction  int64 = 650000
	DefaultDependentIncomeLimit int64 = 480000
)

// Source is the slice of the store the engine reads from.
type Source interface {
	ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error)
	ListAttendance(ctx context.Context, userID string, from, to time.Time) ([]model.AttendanceRecord, error)
	ListSessions(ctx context.Context, userID string, since time.Time) ([]model.PomodoroSession, error)
	GetAccountingSettings(ctx context.Context, userID string) (*model.AccountingSettings, error)
}

// Options configures an Engine.
type Options struct {
	BlueReturnDeduction  int64
	DependentIncomeLimit int64
	Location             *time.Location
	Now                  func() time.Time
}

// Engine folds a fresh snapshot of records into statistics on every call.
type Engine struct {
	source Source
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an aggregation engine.
func NewEngine(source Source, opts Options, logger *slog.Logger) *Engine {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{source: source, opts: opts, logger: logger}
}

// Location returns the timezone calendar boundaries are computed in.
func (e *Engine) Location() *time.Location {
	return e.opts.Location
}

// CurrentYear returns the calendar year of the engine's clock.
func (e *Engine) CurrentYear() int {
	return e.opts.Now().In(e.opts.Location).Year()
}

// settings resolves the user's accounting settings over the engine defaults.
func (e *Engine) settings(ctx context.Context, userID string) (model.AccountingSettings, error) {
	s := model.AccountingSettings{
		UserID:               userID,
		BlueReturnDeduction:  e.opts.BlueReturnDeduction,
		DependentIncomeLimit: e.opts.DependentIncomeLimit,
	}
	stored, err := e.source.GetAccountingSettings(ctx, userID)
	if err != nil {
		return s, err
	}
	if stored != nil {
		s.BlueReturnDeduction = stored.BlueReturnDeduction
		s.DependentIncomeLimit = stored.DependentIncomeLimit
	}
	return s, nil
}

// Settings returns the effective accounting settings for a user.
func (e *Engine) Settings(ctx context.Context, userID string) (model.AccountingSettings, error) {
	return e.settings(ctx, userID)
}
