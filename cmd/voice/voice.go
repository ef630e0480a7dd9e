// Package voice handles the command that turns a spoken expense into a record
package voice

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/report"
	"fjacquet/expense-tracker/internal/speech"

	"github.com/spf13/cobra"
)

var (
	transcript string
	audioFile  string
	save       bool
	format     string
)

// Cmd represents the voice command
var Cmd = &cobra.Command{
	Use:   "voice",
	Short: "Extract an expense from a spoken description",
	Long: `Extract an expense from a transcript, or from an audio recording that is
transcribed first. Interim transcripts are printed while the recording is
processed. Use --save to store the extracted expense.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, voiceFunc)
	},
}

func init() {
	Cmd.Flags().StringVar(&transcript, "transcript", "", "Text of the spoken expense")
	Cmd.Flags().StringVar(&audioFile, "audio", "", "Audio recording to transcribe (wav, mp3, ogg, flac, webm, m4a)")
	Cmd.Flags().BoolVar(&save, "save", false, "Store the extracted expense")
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Output format: text, json or yaml")
	Cmd.MarkFlagsMutuallyExclusive("transcript", "audio")
	Cmd.MarkFlagsOneRequired("transcript", "audio")
}

func voiceFunc(ctx context.Context, c *container.Container) error {
	s := c.GetSession()

	text := transcript
	if audioFile != "" {
		audio, err := speech.LoadAudio(audioFile)
		if err != nil {
			return err
		}
		text, err = s.Transcribe(ctx, audio, func(f speech.Fragment) {
			fmt.Fprintf(root.Out, "... %s\n", f.Text)
		})
		if errors.Is(err, speech.ErrNoSpeech) {
			return errors.New("no speech detected")
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(root.Out, "Transcript: %s\n", text)
	}

	candidate, err := s.ExtractVoice(ctx, text)
	if err != nil {
		return err
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
