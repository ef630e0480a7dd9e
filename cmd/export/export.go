// Package export handles the command that writes expenses to a CSV file
package export

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/spf13/cobra"
)

var dir string

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the selected expenses to CSV",
	Long: `Export the expenses matching --month and --year to a CSV file named after
the filter, for example expenses_month-2_year-2024.csv.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, exportFunc)
	},
}

func init() {
	Cmd.Flags().StringVar(&dir, "dir", ".", "Directory the CSV file is written to")
}

func exportFunc(ctx context.Context, c *container.Container) error {
	filter, err := root.Filter()
	if err != nil {
		return err
	}

	path, err := c.GetSession().Export(ctx, dir, filter)
	if errors.Is(err, trackererror.ErrNoExpenses) {
		fmt.Fprintln(root.Out, trackererror.ErrNoExpenses.Error())
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(root.Out, "Exported to %s\n", path)
	return nil
}
