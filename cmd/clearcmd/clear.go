// Package clearcmd handles the command that deletes every stored expense
package clearcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"

	"github.com/spf13/cobra"
)

// Warning is shown before all data is deleted.
const Warning = "Are you sure you want to delete all expense data? This cannot be undone."

var yes bool

// Cmd represents the clear command
var Cmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all expense data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, clearFunc)
	},
}

func init() {
	Cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
}

func clearFunc(ctx context.Context, c *container.Container) error {
	confirmed := yes
	if !confirmed {
		confirmed = confirm(root.In, root.Out)
	}

	if err := c.GetSession().Clear(ctx, confirmed); err != nil {
		if !confirmed {
			fmt.Fprintln(root.Out, "Nothing deleted.")
			return nil
		}
		return err
	}
	fmt.Fprintln(root.Out, "All expense data deleted.")
	return nil
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "%s [y/N] ", Warning)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
