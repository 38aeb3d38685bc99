// Package ledger tracks and gates per-user monthly consumption of metered
// external API categories.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ogulcanaydogan/focusboard/pkg/metrics"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
	"github.com/ogulcanaydogan/focusboard/pkg/storage"
)

// MaxLimit is the largest monthly limit a user may configure.
const MaxLimit = 10000

// DefaultLimit applies to any category without an explicit entry in Limits.
const DefaultLimit = 900

// Limits maps each API category to the limit a fresh monthly row starts with.
type Limits struct {
	Default int64
	PerType map[model.APIType]int64
}

// For returns the default limit for apiType.
func (l Limits) For(apiType model.APIType) int64 {
	if v, ok := l.PerType[apiType]; ok {
		return v
	}
	if l.Default > 0 {
		return l.Default
	}
	return DefaultLimit
}

// ParseLimits builds Limits from configuration keyed by category name.
func ParseLimits(def int64, perType map[string]int64) (Limits, error) {
	limits := Limits{Default: def, PerType: make(map[model.APIType]int64, len(perType))}
	for name, v := range perType {
		apiType, err := model.ParseAPIType(name)
		if err != nil {
			return Limits{}, fmt.Errorf("usage.limits: %w", err)
		}
		if err := ValidateLimit(v); err != nil {
			return Limits{}, fmt.Errorf("usage.limits.%s: %w", name, err)
		}
		limits.PerType[apiType] = v
	}
	return limits, nil
}

// Options configures a Ledger. Zero values fall back to defaults.
type Options struct {
	Limits   Limits
	Clock    Clock
	Location *time.Location
	Alerts   *AlertManager
	Metrics  *metrics.Collector
}

// Ledger is the entry point for reading and mutating usage counters.
type Ledger struct {
	storage storage.Storage
	limits  Limits
	clock   Clock
	loc     *time.Location
	alerts  *AlertManager
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewLedger creates a usage ledger over the given store.
func NewLedger(store storage.Storage, opts Options, logger *slog.Logger) *Ledger {
	l := &Ledger{
		storage: store,
		limits:  opts.Limits,
		clock:   opts.Clock,
		loc:     opts.Location,
		alerts:  opts.Alerts,
		metrics: opts.Metrics,
		logger:  logger,
	}
	if l.clock == nil {
		l.clock = RealClock{}
	}
	if l.loc == nil {
		l.loc = time.UTC
	}
	return l
}

// CurrentMonth returns the YYYY-MM key for the ledger's clock.
func (l *Ledger) CurrentMonth() string {
	return model.MonthKey(l.clock.Now().In(l.loc))
}

// GetUsage returns the current month's usage, creating the row on first use.
func (l *Ledger) GetUsage(ctx context.Context, userID string, apiType model.APIType) (model.UsageInfo, error) {
	rec, err := l.storage.EnsureUsage(ctx, userID, apiType, l.CurrentMonth(), l.limits.For(apiType))
	if err != nil {
		return model.UsageInfo{}, fmt.Errorf("get %s usage: %w", apiType, err)
	}
	return rec.Info(), nil
}

// IncrementUsage records one call. It fails with model.ErrQuotaExceeded, and
// leaves the counter untouched, when the month's limit is already reached.
// The increment itself is a single conditional update, so concurrent callers
// cannot push the count past the limit.
func (l *Ledger) IncrementUsage(ctx context.Context, userID string, apiType model.APIType) (model.UsageInfo, error) {
	month := l.CurrentMonth()
	before, err := l.GetUsage(ctx, userID, apiType)
	if err != nil {
		return model.UsageInfo{}, err
	}
	if before.IsOverLimit {
		return before, l.rejected(userID, apiType, before)
	}

	ok, err := l.storage.IncrementUsageIfBelowLimit(ctx, userID, apiType, month)
	if err != nil {
		return before, fmt.Errorf("increment %s usage: %w", apiType, err)
	}

	after, err := l.GetUsage(ctx, userID, apiType)
	if err != nil {
		return before, err
	}
	if !ok {
		return after, l.rejected(userID, apiType, after)
	}

	l.metrics.IncUsage(string(apiType))
	l.logger.Debug("usage recorded",
		"user_id", userID,
		"api_type", apiType,
		"month", month,
		"count", after.Count,
		"limit", after.Limit,
	)

	if l.alerts != nil {
		l.alerts.Check(ctx, userID, apiType, month, before, after)
	}
	return after, nil
}

func (l *Ledger) rejected(userID string, apiType model.APIType, info model.UsageInfo) error {
	l.metrics.IncRejection(string(apiType))
	l.logger.Warn("usage limit reached",
		"user_id", userID,
		"api_type", apiType,
		"count", info.Count,
		"limit", info.Limit,
	)
	return model.Errorf(model.ErrQuotaExceeded,
		"monthly %s limit reached (%d/%d)", apiType, info.Count, info.Limit)
}

// CheckUsageLimit reports whether another call is allowed this month.
func (l *Ledger) CheckUsageLimit(ctx context.Context, userID string, apiType model.APIType) (bool, error) {
	info, err := l.GetUsage(ctx, userID, apiType)
	if err != nil {
		return false, err
	}
	return !info.IsOverLimit, nil
}

// UpdateUsageLimit sets the current month's limit for one category.
func (l *Ledger) UpdateUsageLimit(ctx context.Context, userID string, apiType model.APIType, newLimit int64) error {
	if err := ValidateLimit(newLimit); err != nil {
		return err
	}
	if err := l.storage.SetUsageLimit(ctx, userID, apiType, l.CurrentMonth(), newLimit); err != nil {
		return fmt.Errorf("update %s limit: %w", apiType, err)
	}
	l.logger.Info("usage limit updated", "user_id", userID, "api_type", apiType, "limit", newLimit)
	return nil
}

// UpdateAllLimits sets the current month's limit for every category.
// Later months start again from the configured defaults.
func (l *Ledger) UpdateAllLimits(ctx context.Context, userID string, newLimit int64) error {
	if err := ValidateLimit(newLimit); err != nil {
		return err
	}
	for _, t := range model.APITypes {
		if err := l.UpdateUsageLimit(ctx, userID, t, newLimit); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLimit enforces 0 <= limit <= MaxLimit.
func ValidateLimit(limit int64) error {
	if limit < 0 || limit > MaxLimit {
		return model.Errorf(model.ErrValidation, "limit must be between 0 and %d", MaxLimit)
	}
	return nil
}

// GetAllUsage fetches every category concurrently.
func (l *Ledger) GetAllUsage(ctx context.Context, userID string) (map[model.APIType]model.UsageInfo, error) {
	var mu sync.Mutex
	result := make(map[model.APIType]model.UsageInfo, len(model.APITypes))

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range model.APITypes {
		g.Go(func() error {
			info, err := l.GetUsage(gctx, userID, t)
			if err != nil {
				return err
			}
			mu.Lock()
			result[t] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// ResetUsage zeroes the current month's count, keeping the limit.
func (l *Ledger) ResetUsage(ctx context.Context, userID string, apiType model.APIType) error {
	month := l.CurrentMonth()
	if _, err := l.storage.EnsureUsage(ctx, userID, apiType, month, l.limits.For(apiType)); err != nil {
		return fmt.Errorf("reset %s usage: %w", apiType, err)
	}
	if err := l.storage.ResetUsageCount(ctx, userID, apiType, month); err != nil {
		return fmt.Errorf("reset %s usage: %w", apiType, err)
	}
	l.logger.Info("usage reset", "user_id", userID, "api_type", apiType, "month", month)
	return nil
}

// History returns the stored rows of the last `months` months including the
// current one, newest first.
func (l *Ledger) History(ctx context.Context, userID string, months int) ([]model.UsageHistoryEntry, error) {
	if months < 1 {
		return nil, model.Errorf(model.ErrValidation, "months must be positive")
	}
	from, err := model.ShiftMonth(l.CurrentMonth(), -(months - 1))
	if err != nil {
		return nil, err
	}
	rows, err := l.storage.ListUsageHistory(ctx, userID, from)
	if err != nil {
		return nil, fmt.Errorf("usage history: %w", err)
	}

	history := make([]model.UsageHistoryEntry, 0, len(rows))
	for _, r := range rows {
		history = append(history, model.UsageHistoryEntry{
			Month:   r.Month,
			APIType: r.APIType,
			Count:   r.Count,
			Limit:   r.Limit,
		})
	}
	return history, nil
}
