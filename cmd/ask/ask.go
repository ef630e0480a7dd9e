// Package ask handles the command that answers questions about spending
package ask

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the ask command
var Cmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your expenses",
	Long: `Ask a natural-language question about your expenses. The whole history is
sent to the Gemini model together with the question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, func(ctx context.Context, c *container.Container) error {
			return askFunc(ctx, c, strings.Join(args, " "))
		})
	},
}

func askFunc(ctx context.Context, c *container.Container, question string) error {
	answer, err := c.GetSession().Ask(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(root.Out, answer)
	return nil
}
