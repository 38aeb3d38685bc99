package taxsim_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
	"github.com/ogulcanaydogan/focusboard/pkg/taxsim"
)

func newSimulator(t *testing.T) *taxsim.Simulator {
	t.Helper()
	table, err := taxsim.DefaultTable()
	require.NoError(t, err)
	return taxsim.NewSimulator(table)
}

func TestDefaultTable(t *testing.T) {
	table, err := taxsim.DefaultTable()
	require.NoError(t, err)
	assert.Equal(t, int64(480000), table.BasicDeduction)
	assert.Equal(t, int64(480000), table.DependentIncomeLimit)
	assert.Len(t, table.SalaryDeduction, 6)
	assert.Len(t, table.IncomeTax, 7)
}

func TestSimulateDependent_Salary(t *testing.T) {
	sim := newSimulator(t)

	tests := []struct {
		name      string
		salary    int64
		income    int64
		dependent bool
		tax       int64
	}{
		{"below minimum deduction", 300000, 0, true, 0},
		{"exactly at the line", 1030000, 480000, true, 0},
		{"one yen over", 1030001, 480001, false, 0},
		{"second bracket", 1700000, 1120000, false, 32000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := sim.SimulateDependent(tt.salary, taxsim.KindSalary)
			require.NoError(t, err)
			assert.Equal(t, tt.income, r.Income)
			assert.Equal(t, tt.dependent, r.IsDependent)
			assert.Equal(t, tt.tax, r.IncomeTax)
			assert.Equal(t, tt.salary, r.AnnualIncome)
			assert.Equal(t, tt.salary-tt.income, r.Deduction)
		})
	}
}

func TestSimulateDependent_Business(t *testing.T) {
	sim := newSimulator(t)

	r, err := sim.SimulateDependent(1000000, taxsim.KindBusiness)
	require.NoError(t, err)
	assert.Equal(t, int64(350000), r.Income)
	assert.True(t, r.IsDependent)
	assert.Equal(t, int64(130000), r.DependentRemaining)
	assert.Equal(t, int64(0), r.TaxableIncome)
}

func TestSimulateDependent_Validation(t *testing.T) {
	sim := newSimulator(t)

	_, err := sim.SimulateDependent(-1, taxsim.KindSalary)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = sim.SimulateDependent(100, "lottery")
	assert.ErrorIs(t, err, model.ErrValidation)

	r, err := sim.SimulateDependent(100, "")
	require.NoError(t, err)
	assert.True(t, r.IsDependent)
}

func TestSimulateMultipleIncomes(t *testing.T) {
	sim := newSimulator(t)

	r, err := sim.SimulateMultipleIncomes([]taxsim.Income{
		{Kind: taxsim.KindSalary, Amount: 500000},
		{Kind: taxsim.KindBusiness, Amount: 900000},
	})
	require.NoError(t, err)
	require.Len(t, r.Sources, 2)
	assert.Equal(t, int64(0), r.Sources[0].Income)
	assert.Equal(t, int64(250000), r.Sources[1].Income)
	assert.Equal(t, int64(250000), r.Income)
	assert.Equal(t, int64(1400000), r.AnnualIncome)
	assert.True(t, r.IsDependent)
	assert.Equal(t, int64(230000), r.DependentRemaining)

	_, err = sim.SimulateMultipleIncomes(nil)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSimulate_IncomeCap(t *testing.T) {
	sim := newSimulator(t)

	r, err := sim.SimulateDependent(taxsim.MaxIncome, taxsim.KindBusiness)
	require.NoError(t, err)
	assert.Positive(t, r.IncomeTax)
	assert.Less(t, r.IncomeTax, r.TaxableIncome)

	_, err = sim.SimulateDependent(taxsim.MaxIncome+1, taxsim.KindSalary)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = sim.SimulateDependent(math.MaxInt64/10, taxsim.KindBusiness)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = sim.SimulateMultipleIncomes([]taxsim.Income{
		{Kind: taxsim.KindBusiness, Amount: taxsim.MaxIncome},
		{Kind: taxsim.KindBusiness, Amount: taxsim.MaxIncome},
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestIncomeTax(t *testing.T) {
	sim := newSimulator(t)
	assert.Equal(t, int64(0), sim.IncomeTax(0))
	assert.Equal(t, int64(572500), sim.IncomeTax(5000000))
	// Truncated to the thousand yen before applying the rate.
	assert.Equal(t, sim.IncomeTax(1000000), sim.IncomeTax(1000999))
	assert.Equal(t, int64(50000), sim.IncomeTax(1000000))
}

func TestSalaryDeduction_TopBracket(t *testing.T) {
	sim := newSimulator(t)
	assert.Equal(t, int64(1950000), sim.SalaryDeduction(20000000))
	assert.Equal(t, int64(1100000+700000), sim.SalaryDeduction(7000000))
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	data := []byte(`name: test
basic_deduction: 0
dependent_income_limit: 1000
business_deduction: 0
salary_deduction:
  - fixed: 0
income_tax:
  - rate_pct: 10
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	table, err := taxsim.LoadTable(path)
	require.NoError(t, err)
	sim := taxsim.NewSimulator(table)

	r, err := sim.SimulateDependent(5000, taxsim.KindSalary)
	require.NoError(t, err)
	assert.False(t, r.IsDependent)
	assert.Equal(t, int64(500), r.IncomeTax)
}

func TestLoadTable_Invalid(t *testing.T) {
	_, err := taxsim.LoadTableFromBytes([]byte("name: empty\n"))
	assert.Error(t, err)

	_, err = taxsim.LoadTableFromBytes([]byte(`dependent_income_limit: 1
salary_deduction:
  - up_to: 100
income_tax:
  - rate_pct: 5
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open-ended")

	_, err = taxsim.LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
