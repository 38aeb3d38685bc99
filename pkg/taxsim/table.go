// Package taxsim estimates income tax and dependent status for a secondary
// earner from bracket tables.
package taxsim

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tables/jp.yaml
var defaultTable []byte

// DeductionBracket is one row of the salary income deduction table. An
// UpTo of zero marks the open-ended top bracket.
type DeductionBracket struct {
	UpTo    int64 `yaml:"up_to"`
	RatePct int64 `yaml:"rate_pct"`
	Fixed   int64 `yaml:"fixed"`
}

// TaxBracket is one row of the income tax quick-calculation table.
type TaxBracket struct {
	UpTo      int64 `yaml:"up_to"`
	RatePct   int64 `yaml:"rate_pct"`
	Deduction int64 `yaml:"deduction"`
}

// Table holds the thresholds and brackets a simulation runs against.
type Table struct {
	Name                 string             `yaml:"name"`
	Updated              string             `yaml:"updated"`
	BasicDeduction       int64              `yaml:"basic_deduction"`
	DependentIncomeLimit int64              `yaml:"dependent_income_limit"`
	BusinessDeduction    int64              `yaml:"business_deduction"`
	SalaryDeduction      []DeductionBracket `yaml:"salary_deduction"`
	IncomeTax            []TaxBracket       `yaml:"income_tax"`
}

// DefaultTable returns the embedded table.
func DefaultTable() (*Table, error) {
	return LoadTableFromBytes(defaultTable)
}

// LoadTable reads a YAML bracket table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tax table %s: %w", path, err)
	}
	t, err := LoadTableFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("tax table %s: %w", path, err)
	}
	return t, nil
}

// LoadTableFromBytes parses and validates YAML table data.
func LoadTableFromBytes(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse tax table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) validate() error {
	if len(t.SalaryDeduction) == 0 {
		return fmt.Errorf("no salary deduction brackets defined")
	}
	if len(t.IncomeTax) == 0 {
		return fmt.Errorf("no income tax brackets defined")
	}
	if t.DependentIncomeLimit <= 0 {
		return fmt.Errorf("dependent_income_limit must be positive")
	}

	var prev int64
	for i, b := range t.SalaryDeduction {
		last := i == len(t.SalaryDeduction)-1
		if (b.UpTo == 0) != last || (!last && b.UpTo <= prev) {
			return fmt.Errorf("salary deduction brackets must ascend and end open-ended")
		}
		prev = b.UpTo
	}
	prev = 0
	for i, b := range t.IncomeTax {
		last := i == len(t.IncomeTax)-1
		if (b.UpTo == 0) != last || (!last && b.UpTo <= prev) {
			return fmt.Errorf("income tax brackets must ascend and end open-ended")
		}
		prev = b.UpTo
	}
	return nil
}
