package taxsim

import (
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// MaxIncome bounds a single source and the combined annual income so the
// bracket arithmetic stays within int64.
const MaxIncome int64 = 10_000_000_000_000

// Kind is the type of an income source.
type Kind string

const (
	KindSalary   Kind = "salary"
	KindBusiness Kind = "business"
)

// ParseKind validates an income kind. Empty means salary.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindSalary:
		return KindSalary, nil
	case KindBusiness:
		return KindBusiness, nil
	default:
		return "", model.Errorf(model.ErrValidation, "invalid income kind %q", s)
	}
}

// Income is one income source.
type Income struct {
	Kind   Kind  `json:"kind"`
	Amount int64 `json:"amount"`
}

// Result is the simulation outcome for one or more income sources.
type Result struct {
	AnnualIncome       int64 `json:"annualIncome"`
	Deduction          int64 `json:"deduction"`
	Income             int64 `json:"income"`
	TaxableIncome      int64 `json:"taxableIncome"`
	IncomeTax          int64 `json:"incomeTax"`
	IsDependent        bool  `json:"isDependent"`
	DependentRemaining int64 `json:"dependentRemaining"`
}

// MultiResult adds the per-source breakdown to a combined Result.
type MultiResult struct {
	Result
	Sources []SourceResult `json:"sources"`
}

// SourceResult is the net income derived from one source.
type SourceResult struct {
	Kind         Kind  `json:"kind"`
	AnnualIncome int64 `json:"annualIncome"`
	Deduction    int64 `json:"deduction"`
	Income       int64 `json:"income"`
}

// Simulator evaluates incomes against a table.
type Simulator struct {
	table *Table
}

// NewSimulator creates a simulator for table.
func NewSimulator(table *Table) *Simulator {
	return &Simulator{table: table}
}

// Table returns the table in use.
func (s *Simulator) Table() *Table {
	return s.table
}

// SimulateDependent evaluates a single income source.
func (s *Simulator) SimulateDependent(annualIncome int64, kind Kind) (Result, error) {
	src, err := s.source(Income{Kind: kind, Amount: annualIncome})
	if err != nil {
		return Result{}, err
	}
	r := s.combine(src.Income)
	r.AnnualIncome = src.AnnualIncome
	r.Deduction = src.Deduction
	return r, nil
}

// SimulateMultipleIncomes evaluates the combined net income of several sources.
func (s *Simulator) SimulateMultipleIncomes(incomes []Income) (MultiResult, error) {
	if len(incomes) == 0 {
		return MultiResult{}, model.Errorf(model.ErrValidation, "at least one income is required")
	}

	out := MultiResult{Sources: make([]SourceResult, 0, len(incomes))}
	var total, annual, deduction int64
	for _, in := range incomes {
		src, err := s.source(in)
		if err != nil {
			return MultiResult{}, err
		}
		out.Sources = append(out.Sources, src)
		total += src.Income
		annual += src.AnnualIncome
		deduction += src.Deduction
		if annual > MaxIncome {
			return MultiResult{}, model.Errorf(model.ErrValidation, "combined annualIncome must not exceed %d", MaxIncome)
		}
	}

	out.Result = s.combine(total)
	out.AnnualIncome = annual
	out.Deduction = deduction
	return out, nil
}

func (s *Simulator) source(in Income) (SourceResult, error) {
	if in.Amount < 0 {
		return SourceResult{}, model.Errorf(model.ErrValidation, "annualIncome must not be negative")
	}
	if in.Amount > MaxIncome {
		return SourceResult{}, model.Errorf(model.ErrValidation, "annualIncome must not exceed %d", MaxIncome)
	}
	kind, err := ParseKind(string(in.Kind))
	if err != nil {
		return SourceResult{}, err
	}

	var deduction int64
	switch kind {
	case KindSalary:
		deduction = s.SalaryDeduction(in.Amount)
	case KindBusiness:
		deduction = min(in.Amount, s.table.BusinessDeduction)
	}
	return SourceResult{
		Kind:         kind,
		AnnualIncome: in.Amount,
		Deduction:    deduction,
		Income:       in.Amount - deduction,
	}, nil
}

func (s *Simulator) combine(income int64) Result {
	taxable := max(0, income-s.table.BasicDeduction)
	return Result{
		Income:             income,
		TaxableIncome:      taxable,
		IncomeTax:          s.IncomeTax(taxable),
		IsDependent:        income <= s.table.DependentIncomeLimit,
		DependentRemaining: max(0, s.table.DependentIncomeLimit-income),
	}
}

// SalaryDeduction returns the employment income deduction for a gross
// salary. It never exceeds the salary itself.
func (s *Simulator) SalaryDeduction(salary int64) int64 {
	for _, b := range s.table.SalaryDeduction {
		if b.UpTo == 0 || salary <= b.UpTo {
			return min(salary, salary*b.RatePct/100+b.Fixed)
		}
	}
	return 0
}

// IncomeTax applies the quick table to taxable income truncated to the
// thousand yen; the result is truncated to the hundred yen.
func (s *Simulator) IncomeTax(taxable int64) int64 {
	taxable = taxable / 1000 * 1000
	if taxable <= 0 {
		return 0
	}
	for _, b := range s.table.IncomeTax {
		if b.UpTo == 0 || taxable <= b.UpTo {
			tax := taxable*b.RatePct/100 - b.Deduction
			return max(0, tax/100*100)
		}
	}
	return 0
}
