// Package forecast handles the command that predicts next month's spend
package forecast

import (
	"context"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/report"

	"github.com/spf13/cobra"
)

var (
	method   string
	filtered bool
	format   string
)

// Cmd represents the forecast command
var Cmd = &cobra.Command{
	Use:   "forecast",
	Short: "Predict next month's total spend",
	Long: `Predict next month's total spend from the monthly totals of your full
history, by linear regression, by the remote model, or both. Use --filtered to
restrict the history to the --month and --year selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, forecastFunc)
	},
}

func init() {
	Cmd.Flags().StringVar(&method, "method", "", "Forecast method: regression, remote or both (default from config)")
	Cmd.Flags().BoolVar(&filtered, "filtered", false, "Only use expenses matching --month and --year")
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Output format: text, json or yaml")
}

func forecastFunc(ctx context.Context, c *container.Container) error {
	m := method
	if m == "" {
		m = c.GetConfig().Forecast.Method
	}

	filter, err := root.Filter()
	if err != nil {
		return err
	}
	scope := &filter
	if !filtered {
		scope = nil
	}

	months, predictions, err := c.GetSession().Forecast(ctx, scope, m)
	if err != nil {
		return err
	}
	return c.GetReportGenerator().Forecast(root.Out, months, predictions, format)
}
