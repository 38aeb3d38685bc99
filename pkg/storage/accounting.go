package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

func (s *SQLite) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, day, category, description, amount, receipt_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, dayKey(tx.Date), tx.Category, tx.Description, tx.Amount, tx.ReceiptID, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SQLite) ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, day, category, description, amount, receipt_id, created_at
		 FROM transactions
		 WHERE user_id = ? AND day >= ? AND day < ?
		 ORDER BY day, created_at`,
		userID, dayKey(from), dayKey(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var (
			t   model.Transaction
			day string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &day, &t.Category, &t.Description, &t.Amount, &t.ReceiptID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		if t.Date, err = parseDay(day); err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *SQLite) CreateReceipt(ctx context.Context, r *model.Receipt) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin receipt insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO receipts (id, user_id, transaction_id, image_path, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.TransactionID, r.ImagePath, r.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}

	if r.OCR != nil {
		day := ""
		if r.OCR.Date != nil {
			day = dayKey(*r.OCR.Date)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ocr_data (receipt_id, store_name, day, total_amount, tax_amount, raw_text)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.OCR.StoreName, day, r.OCR.TotalAmount, r.OCR.TaxAmount, r.OCR.RawText,
		); err != nil {
			return fmt.Errorf("insert ocr data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit receipt: %w", err)
	}
	return nil
}

func (s *SQLite) ListReceipts(ctx context.Context, userID string) ([]model.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.transaction_id, r.image_path, r.created_at,
		        o.store_name, o.day, o.total_amount, o.tax_amount, o.raw_text
		 FROM receipts r
		 LEFT JOIN ocr_data o ON o.receipt_id = r.id
		 WHERE r.user_id = ?
		 ORDER BY r.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []model.Receipt
	for rows.Next() {
		var (
			r               model.Receipt
			store, day, raw sql.NullString
			total, tax      sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.TransactionID, &r.ImagePath, &r.CreatedAt,
			&store, &day, &total, &tax, &raw); err != nil {
			return nil, fmt.Errorf("scan receipt row: %w", err)
		}
		if store.Valid {
			r.OCR = &model.OcrData{
				StoreName:   store.String,
				TotalAmount: total.Int64,
				TaxAmount:   tax.Int64,
				RawText:     raw.String,
			}
			if day.String != "" {
				if d, err := parseDay(day.String); err == nil {
					r.OCR.Date = &d
				}
			}
		}
		r.ImageURL = r.ImagePath
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

func (s *SQLite) GetAccountingSettings(ctx context.Context, userID string) (*model.AccountingSettings, error) {
	var st model.AccountingSettings
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, blue_return_deduction, dependent_income_limit FROM accounting_settings WHERE user_id = ?`,
		userID,
	).Scan(&st.UserID, &st.BlueReturnDeduction, &st.DependentIncomeLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get accounting settings: %w", err)
	}
	return &st, nil
}

func (s *SQLite) SetAccountingSettings(ctx context.Context, st *model.AccountingSettings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounting_settings (user_id, blue_return_deduction, dependent_income_limit, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   blue_return_deduction = excluded.blue_return_deduction,
		   dependent_income_limit = excluded.dependent_income_limit,
		   updated_at = excluded.updated_at`,
		st.UserID, st.BlueReturnDeduction, st.DependentIncomeLimit, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set accounting settings: %w", err)
	}
	return nil
}
