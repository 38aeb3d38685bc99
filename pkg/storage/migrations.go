package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: usage ledger
	`CREATE TABLE IF NOT EXISTS usage_records (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		api_type    TEXT NOT NULL CHECK(api_type IN ('vision', 'calendar', 'tasks', 'gmail')),
		month       TEXT NOT NULL,
		count       INTEGER NOT NULL DEFAULT 0 CHECK(count >= 0),
		limit_value INTEGER NOT NULL DEFAULT 900,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, api_type, month)
	);

	CREATE INDEX IF NOT EXISTS idx_usage_user_month ON usage_records(user_id, month);`,

	// Migration 2: attendance
	`CREATE TABLE IF NOT EXISTS work_locations (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		work_location_id TEXT NOT NULL REFERENCES work_locations(id),
		day              TEXT NOT NULL,
		clock_in         DATETIME,
		clock_out        DATETIME,
		work_minutes     INTEGER,
		note             TEXT NOT NULL DEFAULT '',
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_location ON attendance_records(work_location_id);`,

	// Migration 3: accounting
	`CREATE TABLE IF NOT EXISTS transactions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		day         TEXT NOT NULL,
		category    TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		amount      INTEGER NOT NULL,
		receipt_id  TEXT NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_day ON transactions(user_id, day);

	CREATE TABLE IF NOT EXISTS receipts (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		transaction_id TEXT NOT NULL DEFAULT '',
		image_path     TEXT NOT NULL,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ocr_data (
		receipt_id   TEXT PRIMARY KEY REFERENCES receipts(id) ON DELETE CASCADE,
		store_name   TEXT NOT NULL DEFAULT '',
		day          TEXT NOT NULL DEFAULT '',
		total_amount INTEGER NOT NULL DEFAULT 0,
		tax_amount   INTEGER NOT NULL DEFAULT 0,
		raw_text     TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS accounting_settings (
		user_id                TEXT PRIMARY KEY,
		blue_return_deduction  INTEGER NOT NULL,
		dependent_income_limit INTEGER NOT NULL,
		updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,

	// Migration 4: pomodoro
	`CREATE TABLE IF NOT EXISTS pomodoro_sessions (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		mode              TEXT NOT NULL,
		category          TEXT NOT NULL DEFAULT '',
		duration_minutes  INTEGER NOT NULL DEFAULT 0,
		completion_status TEXT NOT NULL,
		started_at        DATETIME NOT NULL,
		ended_at          DATETIME,
		calendar_event_id TEXT,
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON pomodoro_sessions(user_id, started_at);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
