// Package serve handles the command that runs the credential-holding relay
package serve

import (
	"context"
	"os/signal"
	"syscall"

	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/internal/container"
	"fjacquet/expense-tracker/internal/logging"

	"github.com/spf13/cobra"
)

var listen string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay that holds the Gemini credential",
	Long: `Run an HTTP relay exposing completion, receipt recognition and streaming
transcription to clients that have no credential. Point their ai.relay_url
at this server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Run(cmd, serveFunc)
	},
}

func init() {
	Cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config)")
}

func serveFunc(ctx context.Context, c *container.Container) error {
	server, err := c.NewRelayServer()
	if err != nil {
		return err
	}

	addr := listen
	if addr == "" {
		addr = c.GetConfig().Relay.Listen
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root.Log.Info("Starting relay", logging.F("addr", addr))
	return server.ListenAndServe(ctx, addr)
}
