package storage

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// Storage defines the persistence layer. All rows are owned by a user id and
// every query is scoped to it.
type Storage interface {
	// EnsureUsage returns the usage row for the month, creating it with
	// count=0 and defaultLimit when absent.
	EnsureUsage(ctx context.Context, userID string, apiType model.APIType, month string, defaultLimit int64) (*model.UsageRecord, error)

	// IncrementUsageIfBelowLimit adds one to count in a single conditional
	// update and reports whether a row was changed.
	IncrementUsageIfBelowLimit(ctx context.Context, userID string, apiType model.APIType, month string) (bool, error)

	// SetUsageLimit upserts the month's limit, creating the row with count=0.
	SetUsageLimit(ctx context.Context, userID string, apiType model.APIType, month string, limit int64) error

	// ResetUsageCount sets count to zero without touching the limit.
	ResetUsageCount(ctx context.Context, userID string, apiType model.APIType, month string) error

	// ListUsageHistory returns rows with month >= fromMonth, newest first.
	ListUsageHistory(ctx context.Context, userID, fromMonth string) ([]model.UsageRecord, error)

	CreateWorkLocation(ctx context.Context, loc *model.WorkLocation) error
	GetWorkLocation(ctx context.Context, userID, id string) (*model.WorkLocation, error)
	ListWorkLocations(ctx context.Context, userID string) ([]model.WorkLocation, error)
	// DeleteWorkLocation fails with model.ErrConflict while attendance rows reference it.
	DeleteWorkLocation(ctx context.Context, userID, id string) error

	// CreateAttendance fails with model.ErrConflict when the user already has a row for the date.
	CreateAttendance(ctx context.Context, rec *model.AttendanceRecord) error
	GetAttendance(ctx context.Context, userID, id string) (*model.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, rec *model.AttendanceRecord) error
	DeleteAttendance(ctx context.Context, userID, id string) error
	// ListAttendance returns rows with from <= date < to, oldest first.
	ListAttendance(ctx context.Context, userID string, from, to time.Time) ([]model.AttendanceRecord, error)

	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	// ListTransactions returns rows with from <= date < to, oldest first.
	ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error)

	CreateReceipt(ctx context.Context, r *model.Receipt) error
	ListReceipts(ctx context.Context, userID string) ([]model.Receipt, error)

	CreateSession(ctx context.Context, s *model.PomodoroSession) error
	SetSessionCalendarEvent(ctx context.Context, userID, id, eventID string) error
	// ListSessions returns sessions started at or after since, oldest first.
	ListSessions(ctx context.Context, userID string, since time.Time) ([]model.PomodoroSession, error)

	// GetAccountingSettings returns nil, nil when the user has no overrides.
	GetAccountingSettings(ctx context.Context, userID string) (*model.AccountingSettings, error)
	SetAccountingSettings(ctx context.Context, s *model.AccountingSettings) error

	// Close releases resources.
	Close() error
}
