// Package summary handles the command that reports totals per category and month
package summary

import (
	"context"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/report"

	"github.com/spf13/cobra"
)

var format string

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals per category for the selected month and year",
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, summaryFunc)
	},
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Output format: text, json or yaml")
}

func summaryFunc(ctx context.Context, c *container.Container) error {
	filter, err := root.Filter()
	if err != nil {
		return err
	}
	expenses, err := c.GetSession().Expenses(ctx, filter)
	if err != nil {
		return err
	}

	out, err := c.GetReportGenerator().Summary(report.NewSummary(filter, expenses), format)
	if err != nil {
		return err
	}
	_, err = root.Out.Write(out)
	return err
}
