package model

import (
	"fmt"
	"time"
)

// APIType identifies a metered external API category.
type APIType string

const (
	APIVision   APIType = "vision"
	APICalendar APIType = "calendar"
	APITasks    APIType = "tasks"
	APIGmail    APIType = "gmail"
)

// APITypes is the fixed set of categories tracked by the usage ledger.
var APITypes = []APIType{APIVision, APICalendar, APITasks, APIGmail}

// ParseAPIType validates a category name.
func ParseAPIType(s string) (APIType, error) {
	for _, t := range APITypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", Errorf(ErrValidation, "invalid apiType %q", s)
}

// UsageRecord is one counter row per (user, API category, calendar month).
type UsageRecord struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	APIType   APIType   `json:"apiType" db:"api_type"`
	Month     string    `json:"month" db:"month"`
	Count     int64     `json:"count" db:"count"`
	Limit     int64     `json:"limit" db:"limit_value"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UsageInfo is the caller-facing view of a usage row.
type UsageInfo struct {
	Count       int64 `json:"count"`
	Limit       int64 `json:"limit"`
	Remaining   int64 `json:"remaining"`
	IsOverLimit bool  `json:"isOverLimit"`
	Percentage  int   `json:"percentage"`
}

// NewUsageInfo derives remaining, over-limit and percentage from a count and limit.
// A zero limit is always over limit and reports 100%.
func NewUsageInfo(count, limit int64) UsageInfo {
	info := UsageInfo{
		Count:       count,
		Limit:       limit,
		Remaining:   max(0, limit-count),
		IsOverLimit: count >= limit,
	}
	if limit <= 0 {
		info.Percentage = 100
		return info
	}
	info.Percentage = int(min(100, RoundHalfUp(100*float64(count)/float64(limit))))
	return info
}

// Info converts a stored row into its UsageInfo.
func (r *UsageRecord) Info() UsageInfo {
	return NewUsageInfo(r.Count, r.Limit)
}

// UsageHistoryEntry is one month of one category in a usage history listing.
type UsageHistoryEntry struct {
	Month   string  `json:"month"`
	APIType APIType `json:"apiType"`
	Count   int64   `json:"count"`
	Limit   int64   `json:"limit"`
}

// String renders the record for logs and CLI output.
func (r *UsageRecord) String() string {
	return fmt.Sprintf("%s/%s/%s %d/%d", r.UserID, r.APIType, r.Month, r.Count, r.Limit)
}
