// Package importcmd handles the command that loads expenses from a CSV file
package importcmd

import (
	"context"
	"fmt"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import expenses from a CSV file produced by export",
	Long: `Import expenses from a CSV file with the Description, Amount, Category,
Subcategory and Date columns. Nothing is stored unless every row is valid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, func(ctx context.Context, c *container.Container) error {
			return importFunc(ctx, c, args[0])
		})
	},
}

func importFunc(ctx context.Context, c *container.Container, path string) error {
	added, err := c.GetSession().Import(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(root.Out, "Imported %d expenses\n", len(added))
	return nil
}
