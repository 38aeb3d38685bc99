package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
	"github.com/ogulcanaydogan/focusboard/pkg/taxsim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate KIND=AMOUNT...",
	Short: "Run the dependent income simulator",
	Long: `Simulate whether the given incomes keep a person within the dependent
income limit. Each argument is kind=amount, e.g. salary=1030000 business=400000.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func parseIncomes(args []string) ([]taxsim.Income, error) {
	incomes := make([]taxsim.Income, 0, len(args))
	for _, arg := range args {
		kind, raw, ok := strings.Cut(arg, "=")
		if !ok {
			kind, raw = string(taxsim.KindSalary), arg
		}
		k, err := taxsim.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", raw)
		}
		incomes = append(incomes, taxsim.Income{Kind: k, Amount: amount})
	}
	return incomes, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sim, err := initSimulator(cfg)
	if err != nil {
		return err
	}

	incomes, err := parseIncomes(args)
	if err != nil {
		return err
	}
	res, err := sim.SimulateMultipleIncomes(incomes)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tAMOUNT\tDEDUCTION\tINCOME\n")
	for _, s := range res.Sources {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", s.Kind, s.AnnualIncome, s.Deduction, s.Income)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal Income:        %s\n", model.FormatYen(res.Income))
	fmt.Fprintf(out, "Taxable Income:      %s\n", model.FormatYen(res.TaxableIncome))
	fmt.Fprintf(out, "Income Tax:          %s\n", model.FormatYen(res.IncomeTax))
	fmt.Fprintf(out, "Dependent:           %t\n", res.IsDependent)
	fmt.Fprintf(out, "Dependent Remaining: %s\n", model.FormatYen(res.DependentRemaining))
	return nil
}
