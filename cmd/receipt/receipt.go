// Package receipt handles the command that reads an expense from a receipt
package receipt

import (
	"context"
	"fmt"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/models"
	"fjacquet/expense-tracker/internal/ocr"
	"fjacquet/expense-tracker/internal/report"

	"github.com/spf13/cobra"
)

var (
	file     string
	text     string
	save     bool
	showText bool
	format   string
)

// Cmd represents the receipt command
var Cmd = &cobra.Command{
	Use:   "receipt",
	Short: "Extract an expense from a receipt image or PDF",
	Long: `Extract an expense from a receipt. Images are read by the Gemini model,
PDFs by their embedded text. Already recognized text can be passed with --text.
Use --save to store the extracted expense.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, receiptFunc)
	},
}

func init() {
	Cmd.Flags().StringVar(&file, "file", "", "Receipt image or PDF")
	Cmd.Flags().StringVar(&text, "text", "", "Recognized receipt text")
	Cmd.Flags().BoolVar(&save, "save", false, "Store the extracted expense")
	Cmd.Flags().BoolVar(&showText, "show-text", false, "Print the recognized text")
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Output format: text, json or yaml")
	Cmd.MarkFlagsMutuallyExclusive("file", "text")
	Cmd.MarkFlagsOneRequired("file", "text")
}

func receiptFunc(ctx context.Context, c *container.Container) error {
	s := c.GetSession()

	var candidate models.Candidate
	if file != "" {
		doc, err := ocr.LoadDocument(file)
		if err != nil {
			return err
		}
		recognized, extracted, err := s.ExtractReceipt(ctx, doc)
		if err != nil {
			return err
		}
		if showText {
			fmt.Fprintf(root.Out, "%s\n\n", recognized)
		}
		candidate = extracted
	} else {
		extracted, err := s.ExtractReceiptText(ctx, text)
		if err != nil {
			return err
		}
		candidate = extracted
	}

	if err := c.GetReportGenerator().Candidate(root.Out, candidate, format); err != nil {
		return err
	}

	if !save {
		return nil
	}
	expense, err := s.SaveCandidate(ctx, candidate)
	if err != nil {
		return err
	}
	fmt.Fprintf(root.Out, "Saved expense #%d\n", expense.ID)
	return nil
}
