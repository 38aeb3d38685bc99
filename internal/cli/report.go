package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print accounting, attendance and productivity reports",
	Long:  `Print the same aggregates the API serves, computed from the database.`,
}

var reportKPICmd = &cobra.Command{
	Use:   "kpi",
	Short: "Yearly revenue, expense and income KPIs",
	RunE:  runReportKPI,
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Revenue and expense per month",
	RunE:  runReportMonthly,
}

var reportAttendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Monthly attendance summary",
	RunE:  runReportAttendance,
}

var reportHeatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Pomodoro productivity by time slot",
	RunE:  runReportHeatmap,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportKPICmd)
	reportCmd.AddCommand(reportMonthlyCmd)
	reportCmd.AddCommand(reportAttendanceCmd)
	reportCmd.AddCommand(reportHeatmapCmd)

	reportCmd.PersistentFlags().StringP("user", "u", "", "User id")
	_ = reportCmd.MarkPersistentFlagRequired("user")

	reportKPICmd.Flags().IntP("year", "y", 0, "Year (default: current year)")
	reportMonthlyCmd.Flags().IntP("year", "y", 0, "Year (default: current year)")

	reportAttendanceCmd.Flags().IntP("year", "y", 0, "Year")
	reportAttendanceCmd.Flags().IntP("month", "m", 0, "Month (1-12)")
	_ = reportAttendanceCmd.MarkFlagRequired("year")
	_ = reportAttendanceCmd.MarkFlagRequired("month")

	reportHeatmapCmd.Flags().IntP("weeks", "w", 4, "Number of weeks to include")
}

func yearFlag(cmd *cobra.Command, e *env) int {
	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = e.engine.CurrentYear()
	}
	return year
}

func runReportKPI(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	kpi, err := e.engine.ComputeKPI(cmd.Context(), user, yearFlag(cmd, e))
	if err != nil {
		return fmt.Errorf("compute kpi: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== KPI %d (%s) ===\n", kpi.Year, user)
	fmt.Fprintf(out, "Revenue:             %s (%+.1f%%)\n", model.FormatYen(kpi.YearRevenue), kpi.YearRevenueChange)
	fmt.Fprintf(out, "Expense:             %s (%d%% of revenue)\n", model.FormatYen(kpi.YearExpense), kpi.ExpenseRate)
	fmt.Fprintf(out, "Business Income:     %s\n", model.FormatYen(kpi.BusinessIncome))
	fmt.Fprintf(out, "Dependent Remaining: %s\n", model.FormatYen(kpi.DependentRemaining))
	return nil
}

func runReportMonthly(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	year := yearFlag(cmd, e)
	months, err := e.engine.ComputeMonthlyBreakdown(cmd.Context(), user, year)
	if err != nil {
		return fmt.Errorf("compute monthly breakdown: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Monthly %d (%s) ===\n", year, user)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "MONTH\tREVENUE\tEXPENSE\tPROFIT\tTXNS\n")
	for _, m := range months {
		fmt.Fprintf(w, "%02d\t%d\t%d\t%d\t%d\n", m.Month, m.Revenue, m.Expense, m.Profit, m.TransactionCount)
	}
	w.Flush()
	return nil
}

func runReportAttendance(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	s, err := e.engine.ComputeAttendanceSummary(cmd.Context(), user, year, month)
	if err != nil {
		return fmt.Errorf("compute attendance summary: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Attendance %d-%02d (%s) ===\n", s.Year, s.Month, user)
	fmt.Fprintf(out, "Work Days:     %d\n", s.TotalWorkDays)
	fmt.Fprintf(out, "Total Hours:   %.1f\n", s.TotalWorkHours)
	fmt.Fprintf(out, "Average Hours: %.1f\n", s.AverageWorkHours)

	weeks := make([]string, 0, len(s.WeeklyData))
	for k := range s.WeeklyData {
		weeks = append(weeks, k)
	}
	sort.Strings(weeks)

	fmt.Fprintf(out, "\nBy Week:\n")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  WEEK\tDAYS\tMINUTES\n")
	for _, k := range weeks {
		fmt.Fprintf(w, "  %s\t%d\t%d\n", k, s.WeeklyData[k].WorkDays, s.WeeklyData[k].TotalWorkMinutes)
	}
	w.Flush()
	return nil
}

func runReportHeatmap(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	weeks, _ := cmd.Flags().GetInt("weeks")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	h, err := e.engine.ComputeProductivityHeatmap(cmd.Context(), user, weeks)
	if err != nil {
		return fmt.Errorf("compute heatmap: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Productivity, last %d weeks (%s) ===\n", h.Weeks, user)
	if len(h.TimeSlotProductivity) == 0 {
		fmt.Fprintln(out, "No work sessions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SLOT\tDOW\tSESSIONS\tDONE\tRATE\tFOCUS\tSCORE\n")
	for _, c := range h.TimeSlotProductivity {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d%%\t%dm\t%d\n",
			c.TimeSlot, c.DayOfWeek, c.TotalSessions, c.CompletedSessions,
			c.CompletionRate, c.AverageFocusMinutes, c.ProductivityScore,
		)
	}
	w.Flush()

	if h.GoldenTime != nil {
		fmt.Fprintf(out, "\nGolden time: %s (average score %.1f)\n", h.GoldenTime.TimeSlot, h.GoldenTime.AverageScore)
	}
	return nil
}
