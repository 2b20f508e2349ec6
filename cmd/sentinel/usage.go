package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sentinel-hq/sentinel/pkg/budget"
	"sentinel-hq/sentinel/pkg/cli"
)

var usageFlags struct {
	output string
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Print usage metrics from the configured ledger",
	Long: `Print today's and this month's provider usage, the per-provider breakdown,
estimated savings and the budget status, read from the configured ledger.

Examples:
  # Text report
  sentinel usage --config config.yaml

  # JSON report
  sentinel usage --config config.yaml --output json`,
	RunE: runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().StringVarP(&usageFlags.output, "output", "o", "text", "output format (text, json)")
}

func runUsage(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(usageFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	if !verbose {
		slog.SetDefault(slog.New(slog.DiscardHandler))
	}

	ctx := cmd.Context()
	usage, err := openLedger(ctx, cfg.Ledger)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}
	defer usage.Close()

	enforcer, err := newEnforcer(ctx, cfg, usage, nil)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}

	report, err := enforcer.GetUsageMetrics(ctx)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), usageTable(report))
}

// usageTable renders a usage report as text rows.
type usageTable budget.UsageMetrics

func (u usageTable) Rows() [][]string {
	rows := [][]string{
		{"PERIOD", "REQUESTS", "TOKENS", "COST", "AVG/REQUEST"},
		periodRow("today", u.Today),
		periodRow("month", u.Month),
		{},
		{"API", "REQUESTS", "TOKENS", "COST", "SHARE"},
	}
	for _, b := range u.ByAPI {
		rows = append(rows, []string{
			b.APIType,
			fmt.Sprint(b.Requests),
			fmt.Sprint(b.Tokens),
			usd(b.Cost),
			fmt.Sprintf("%.1f%%", b.Percentage),
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"BUDGET", "SPEND", "LIMIT", "UTILIZATION"},
		[]string{"daily", usd(u.Budget.DailySpend), usd(u.Budget.DailyBudget), percent(u.Budget.DailyUtilization)},
		[]string{"monthly", usd(u.Budget.MonthlySpend), usd(u.Budget.MonthlyBudget), percent(u.Budget.MonthlyUtilization)},
		[]string{},
		[]string{"ESTIMATED SAVINGS", usd(u.EstimatedSavings)},
	)
	return rows
}

func periodRow(name string, p budget.PeriodUsage) []string {
	return []string{name, fmt.Sprint(p.Requests), fmt.Sprint(p.Tokens), usd(p.Cost), usd(p.AverageCostPerCall)}
}

func usd(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
