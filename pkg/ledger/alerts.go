package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ogulcanaydogan/focusboard/pkg/alerts"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// AlertManager dispatches quota alerts when an increment moves a counter
// into a higher alert level.
type AlertManager struct {
	thresholdPct float64
	notifiers    []alerts.Notifier
	logger       *slog.Logger
}

// NewAlertManager creates an alert manager. A thresholdPct of zero only
// reports the critical and exceeded levels.
func NewAlertManager(thresholdPct float64, notifiers []alerts.Notifier, logger *slog.Logger) *AlertManager {
	return &AlertManager{
		thresholdPct: thresholdPct,
		notifiers:    notifiers,
		logger:       logger,
	}
}

// Check compares the usage before and after one increment and notifies
// when the alert level went up.
func (m *AlertManager) Check(ctx context.Context, userID string, apiType model.APIType, month string, before, after model.UsageInfo) {
	if after.Limit <= 0 {
		return
	}

	prev := alerts.LevelFor(float64(before.Percentage), m.thresholdPct)
	level := alerts.LevelFor(float64(after.Percentage), m.thresholdPct)
	if level.Rank() <= prev.Rank() {
		return
	}

	alert := alerts.Alert{
		Level:        level,
		UserID:       userID,
		APIType:      string(apiType),
		Month:        month,
		Count:        after.Count,
		Limit:        after.Limit,
		ThresholdPct: m.thresholdPct,
		Message: fmt.Sprintf("%s usage at %d%% (%d / %d) for %s",
			apiType, after.Percentage, after.Count, after.Limit, month),
	}

	m.logger.Warn("quota threshold crossed",
		"user_id", userID,
		"api_type", apiType,
		"level", level,
		"pct", after.Percentage,
		"count", after.Count,
		"limit", after.Limit,
	)

	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, alert); err != nil {
			m.logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"user_id", userID,
				"error", err,
			)
		}
	}
}
