package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

const usageColumns = "id, user_id, api_type, month, count, limit_value, created_at, updated_at"

func (s *SQLite) EnsureUsage(ctx context.Context, userID string, apiType model.APIType, month string, defaultLimit int64) (*model.UsageRecord, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_records (id, user_id, api_type, month, count, limit_value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)
		 ON CONFLICT(user_id, api_type, month) DO NOTHING`,
		uuid.New().String(), userID, apiType, month, defaultLimit, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure usage row: %w", err)
	}

	var r model.UsageRecord
	err = s.db.QueryRowContext(ctx,
		`SELECT `+usageColumns+` FROM usage_records WHERE user_id = ? AND api_type = ? AND month = ?`,
		userID, apiType, month,
	).Scan(&r.ID, &r.UserID, &r.APIType, &r.Month, &r.Count, &r.Limit, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get usage row: %w", err)
	}
	return &r, nil
}

func (s *SQLite) IncrementUsageIfBelowLimit(ctx context.Context, userID string, apiType model.APIType, month string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE usage_records SET count = count + 1, updated_at = ?
		 WHERE user_id = ? AND api_type = ? AND month = ? AND count < limit_value`,
		time.Now().UTC(), userID, apiType, month,
	)
	if err != nil {
		return false, fmt.Errorf("increment usage: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rows == 1, nil
}

func (s *SQLite) SetUsageLimit(ctx context.Context, userID string, apiType model.APIType, month string, limit int64) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_records (id, user_id, api_type, month, count, limit_value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)
		 ON CONFLICT(user_id, api_type, month) DO UPDATE SET
		   limit_value = excluded.limit_value,
		   updated_at = excluded.updated_at`,
		uuid.New().String(), userID, apiType, month, limit, now, now,
	)
	if err != nil {
		return fmt.Errorf("set usage limit: %w", err)
	}
	return nil
}

func (s *SQLite) ResetUsageCount(ctx context.Context, userID string, apiType model.APIType, month string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE usage_records SET count = 0, updated_at = ?
		 WHERE user_id = ? AND api_type = ? AND month = ?`,
		time.Now().UTC(), userID, apiType, month,
	)
	if err != nil {
		return fmt.Errorf("reset usage: %w", err)
	}
	return nil
}

func (s *SQLite) ListUsageHistory(ctx context.Context, userID, fromMonth string) ([]model.UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+usageColumns+` FROM usage_records
		 WHERE user_id = ? AND month >= ?
		 ORDER BY month DESC, api_type`,
		userID, fromMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("list usage history: %w", err)
	}
	defer rows.Close()

	var records []model.UsageRecord
	for rows.Next() {
		var r model.UsageRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.APIType, &r.Month, &r.Count, &r.Limit, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
