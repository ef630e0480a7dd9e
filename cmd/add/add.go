// Package add handles the command that records a new expense
package add

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/trackererror"

	"github.com/spf13/cobra"
)

var (
	description string
	amount      string
	date        string
	category    string
	subcategory string
	noSuggest   bool
)

// Cmd represents the add command
var Cmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new expense",
	Long: `Record a new expense. When no category is given the tracker suggests one
from the description, using the remote model when available and keywords otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, addFunc)
	},
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "What the money was spent on")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount spent (positive number)")
	Cmd.Flags().StringVarP(&date, "date", "t", "", "Date as YYYY-MM-DD (default today)")
	Cmd.Flags().StringVarP(&category, "category", "c", "", "Category: food, travel, friends or others")
	Cmd.Flags().StringVarP(&subcategory, "subcategory", "s", "", "Free-text subcategory")
	Cmd.Flags().BoolVar(&noSuggest, "no-suggest", false, "Do not suggest a category when none is given")
}

func addFunc(ctx context.Context, c *container.Container) error {
	s := c.GetSession()

	input := models.ExpenseInput{
		Description: description,
		Amount:      amount,
		Date:        date,
		Category:    category,
		Subcategory: subcategory,
	}
	if input.Date == "" {
		input.Date = time.Now().Format("2006-01-02")
	}

	if input.Category == "" && !noSuggest {
		result, err := s.SuggestCategory(ctx, description)
		switch {
		case err == nil:
			input.Category = string(result.Category)
			if input.Subcategory == "" {
				input.Subcategory = result.Subcategory
			}
			root.Log.Debug(fmt.Sprintf("Suggested category %s", result.Category))
		case errors.Is(err, trackererror.ErrShortDescription):
		default:
			root.Log.WithError(err).Warn("Category suggestion failed")
		}
	}

	expense, err := s.AddExpense(ctx, input)
	if err != nil {
		var verr *trackererror.ValidationError
		if errors.As(err, &verr) {
			return errors.New(verr.Reason)
		}
		return err
	}

	fmt.Fprintf(root.Out, "Added expense #%d: %s %s (%s)\n",
		expense.ID, expense.Description, models.FormatAmount(expense.Amount), expense.Category)
	return nil
}
