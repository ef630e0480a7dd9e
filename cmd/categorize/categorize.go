// Package categorize handles expense categorization commands
package categorize

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize <description>",
	Short: "Suggest a category for an expense description",
	Long: `Suggest a category and subcategory for an expense description using the
Gemini model, falling back to keyword matching when the model is unavailable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, func(ctx context.Context, c *container.Container) error {
			return categorizeFunc(ctx, c, strings.Join(args, " "))
		})
	},
}

func categorizeFunc(ctx context.Context, c *container.Container, description string) error {
	result, err := c.GetSession().SuggestCategory(ctx, description)
	if err != nil {
		return err
	}

	category := c.GetReportGenerator().CategoryTitle(result.Category)
	if result.Subcategory != "" {
		category += " / " + result.Subcategory
	}
	fmt.Fprintf(root.Out, "Category: %s\n", category)
	return nil
}
