package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/focusboard/pkg/alerts"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect and manage monthly API usage quotas",
}

var usageStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current month usage for a user",
	RunE:  runUsageStatus,
}

var usageSetLimitCmd = &cobra.Command{
	Use:   "set-limit",
	Short: "Set this month's limit for one or all API types",
	RunE:  runUsageSetLimit,
}

var usageResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset this month's counter for an API type",
	RunE:  runUsageReset,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usageStatusCmd)
	usageCmd.AddCommand(usageSetLimitCmd)
	usageCmd.AddCommand(usageResetCmd)

	usageCmd.PersistentFlags().StringP("user", "u", "", "User id")
	_ = usageCmd.MarkPersistentFlagRequired("user")

	usageStatusCmd.Flags().Int("months", 0, "Also list this many months of history")

	usageSetLimitCmd.Flags().Int64P("limit", "l", 0, "Monthly limit")
	usageSetLimitCmd.Flags().StringP("type", "t", "", "API type (default: all types)")
	_ = usageSetLimitCmd.MarkFlagRequired("limit")

	usageResetCmd.Flags().StringP("type", "t", "", "API type")
	_ = usageResetCmd.MarkFlagRequired("type")
}

func runUsageStatus(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	months, _ := cmd.Flags().GetInt("months")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	usage, err := e.ledger.GetAllUsage(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("get usage: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage for %s (%s)\n\n", user, e.ledger.CurrentMonth())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "API\tCOUNT\tLIMIT\tREMAINING\tUSAGE\n")
	for _, t := range model.APITypes {
		info := usage[t]

		status := ""
		switch alerts.LevelFor(float64(info.Percentage), e.cfg.Usage.AlertThresholdPct) {
		case alerts.AlertExceeded:
			status = " [EXCEEDED]"
		case alerts.AlertCritical:
			status = " [CRITICAL]"
		case alerts.AlertWarning:
			status = " [WARNING]"
		}

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d%%%s\n",
			t, info.Count, info.Limit, info.Remaining, info.Percentage, status,
		)
	}
	w.Flush()

	if months <= 0 {
		return nil
	}

	history, err := e.ledger.History(cmd.Context(), user, months)
	if err != nil {
		return fmt.Errorf("usage history: %w", err)
	}
	fmt.Fprintf(out, "\nHistory:\n")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  MONTH\tAPI\tCOUNT\tLIMIT\n")
	for _, h := range history {
		fmt.Fprintf(w, "  %s\t%s\t%d\t%d\n", h.Month, h.APIType, h.Count, h.Limit)
	}
	w.Flush()

	return nil
}

func runUsageSetLimit(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt64("limit")
	typeName, _ := cmd.Flags().GetString("type")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if typeName == "" {
		if err := e.ledger.UpdateAllLimits(cmd.Context(), user, limit); err != nil {
			return fmt.Errorf("set limit: %w", err)
		}
		typeName = "all"
	} else {
		apiType, err := model.ParseAPIType(typeName)
		if err != nil {
			return err
		}
		if err := e.ledger.UpdateUsageLimit(cmd.Context(), user, apiType, limit); err != nil {
			return fmt.Errorf("set limit: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Limit set:\n")
	fmt.Fprintf(out, "  User:   %s\n", user)
	fmt.Fprintf(out, "  Month:  %s\n", e.ledger.CurrentMonth())
	fmt.Fprintf(out, "  Type:   %s\n", typeName)
	fmt.Fprintf(out, "  Limit:  %d\n", limit)

	return nil
}

func runUsageReset(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	typeName, _ := cmd.Flags().GetString("type")

	apiType, err := model.ParseAPIType(typeName)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.ledger.ResetUsage(cmd.Context(), user, apiType); err != nil {
		return fmt.Errorf("reset usage: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset %s usage for %s (%s)\n", apiType, user, e.ledger.CurrentMonth())
	return nil
}
