package alerts

import "context"

// AlertLevel indicates how close a usage counter is to its monthly limit.
type AlertLevel string

const (
	AlertNone     AlertLevel = ""
	AlertWarning  AlertLevel = "warning"  // at or above the configured threshold
	AlertCritical AlertLevel = "critical" // at or above 95%
	AlertExceeded AlertLevel = "exceeded" // limit reached
)

// Rank orders levels so crossings can be detected.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertWarning:
		return 1
	case AlertCritical:
		return 2
	case AlertExceeded:
		return 3
	default:
		return 0
	}
}

// LevelFor classifies a usage percentage against a warning threshold.
func LevelFor(pct, thresholdPct float64) AlertLevel {
	switch {
	case pct >= 100:
		return AlertExceeded
	case pct >= 95:
		return AlertCritical
	case thresholdPct > 0 && pct >= thresholdPct:
		return AlertWarning
	default:
		return AlertNone
	}
}

// Alert is a quota threshold notification for one user and API category.
type Alert struct {
	Level        AlertLevel `json:"level"`
	UserID       string     `json:"user_id"`
	APIType      string     `json:"api_type"`
	Month        string     `json:"month"`
	Count        int64      `json:"count"`
	Limit        int64      `json:"limit"`
	ThresholdPct float64    `json:"threshold_pct"`
	Message      string     `json:"message"`
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
