package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// KPI is the annual accounting summary.
type KPI struct {
	Year               int     `json:"year"`
	YearRevenue        int64   `json:"yearRevenue"`
	YearRevenueChange  float64 `json:"yearRevenueChange"`
	YearExpense        int64   `json:"yearExpense"`
	ExpenseRate        int     `json:"expenseRate"`
	BusinessIncome     int64   `json:"businessIncome"`
	DependentRemaining int64   `json:"dependentRemaining"`
}

// MonthlyData is one month of the annual breakdown.
type MonthlyData struct {
	Month            int   `json:"month"`
	Revenue          int64 `json:"revenue"`
	Expense          int64 `json:"expense"`
	Profit           int64 `json:"profit"`
	TransactionCount int   `json:"transactionCount"`
}

// Totals sums income and expense amounts. Other categories are ignored.
func Totals(txs []model.Transaction) (revenue, expense int64) {
	for _, tx := range txs {
		switch tx.Category {
		case model.CategoryIncome:
			revenue += tx.Amount
		case model.CategoryExpense:
			expense += tx.Amount
		}
	}
	return revenue, expense
}

// BuildKPI derives the KPI from this year's and last year's transactions.
func BuildKPI(year int, current, previous []model.Transaction, settings model.AccountingSettings) KPI {
	revenue, expense := Totals(current)
	prevRevenue, _ := Totals(previous)

	kpi := KPI{
		Year:        year,
		YearRevenue: revenue,
		YearExpense: expense,
	}
	if revenue > 0 {
		kpi.ExpenseRate = int(model.RoundHalfUp(100 * float64(expense) / float64(revenue)))
	}
	if prevRevenue > 0 {
		kpi.YearRevenueChange = model.RoundTo(100*float64(revenue-prevRevenue)/float64(prevRevenue), 1)
	}
	kpi.BusinessIncome = max(0, revenue-expense-settings.BlueReturnDeduction)
	kpi.DependentRemaining = max(0, settings.DependentIncomeLimit-kpi.BusinessIncome)
	return kpi
}

// BuildMonthlyBreakdown buckets transactions into exactly twelve months.
func BuildMonthlyBreakdown(txs []model.Transaction) []MonthlyData {
	months := make([]MonthlyData, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	for _, tx := range txs {
		m := &months[tx.Date.Month()-1]
		switch tx.Category {
		case model.CategoryIncome:
			m.Revenue += tx.Amount
		case model.CategoryExpense:
			m.Expense += tx.Amount
		}
		m.TransactionCount++
	}
	for i := range months {
		months[i].Profit = months[i].Revenue - months[i].Expense
	}
	return months
}

func (e *Engine) yearTransactions(ctx context.Context, userID string, year int) ([]model.Transaction, error) {
	from, to := model.YearBounds(year, e.opts.Location)
	txs, err := e.source.ListTransactions(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list %d transactions: %w", year, err)
	}
	return txs, nil
}

// ComputeKPI returns the annual KPI for year.
func (e *Engine) ComputeKPI(ctx context.Context, userID string, year int) (KPI, error) {
	if err := validateYear(year); err != nil {
		return KPI{}, err
	}
	current, err := e.yearTransactions(ctx, userID, year)
	if err != nil {
		return KPI{}, err
	}
	previous, err := e.yearTransactions(ctx, userID, year-1)
	if err != nil {
		return KPI{}, err
	}
	settings, err := e.settings(ctx, userID)
	if err != nil {
		return KPI{}, fmt.Errorf("accounting settings: %w", err)
	}
	return BuildKPI(year, current, previous, settings), nil
}

// ComputeMonthlyBreakdown returns January through December of year.
func (e *Engine) ComputeMonthlyBreakdown(ctx context.Context, userID string, year int) ([]MonthlyData, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	txs, err := e.yearTransactions(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return BuildMonthlyBreakdown(txs), nil
}

func validateYear(year int) error {
	if year < 1900 || year > 9999 {
		return model.Errorf(model.ErrValidation, "invalid year %d", year)
	}
	return nil
}

func validateMonth(month int) error {
	if month < 1 || month > 12 {
		return model.Errorf(model.ErrValidation, "invalid month %d", month)
	}
	return nil
}

// daysIn returns the number of days in the month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
