// Package list handles the command that prints stored expenses
package list

import (
	"context"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/report"

	"github.com/spf13/cobra"
)

var (
	sortField string
	sortOrder string
	format    string
)

// Cmd represents the list command
var Cmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses for the selected month and year",
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, listFunc)
	},
}

func init() {
	Cmd.Flags().StringVar(&sortField, "sort", string(models.SortByDate), "Sort by date or amount")
	Cmd.Flags().StringVar(&sortOrder, "order", string(models.Descending), "Sort order: asc or desc")
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Output format: text, json or yaml")
}

func listFunc(ctx context.Context, c *container.Container) error {
	filter, err := root.Filter()
	if err != nil {
		return err
	}
	field, order, err := models.ParseSort(sortField, sortOrder)
	if err != nil {
		return err
	}

	expenses, err := c.GetSession().List(ctx, filter, field, order)
	if err != nil {
		return err
	}
	return c.GetReportGenerator().List(root.Out, expenses, format)
}
