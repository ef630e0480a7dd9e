package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fjacquet/expense-tracker/cmd/add"
	"fjacquet/expense-tracker/cmd/ask"
	"fjacquet/expense-tracker/cmd/categorize"
	"fjacquet/expense-tracker/cmd/clearcmd"
	"fjacquet/expense-tracker/cmd/export"
	"fjacquet/expense-tracker/cmd/forecast"
	"fjacquet/expense-tracker/cmd/importcmd"
	"fjacquet/expense-tracker/cmd/list"
	"fjacquet/expense-tracker/cmd/receipt"
	"fjacquet/expense-tracker/cmd/root"
	"fjacquet/expense-tracker/cmd/serve"
	"fjacquet/expense-tracker/cmd/summary"
	"fjacquet/expense-tracker/cmd/voice"
	"fjacquet/expense-tracker/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	config.LoadEnv()

	// 2. Configure global log level directly - this affects ALL new loggers
	configureLogLevelDirectly()

	// 3. Now that logging is properly configured, initialize root command
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(add.Cmd)
	root.Cmd.AddCommand(list.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(clearcmd.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(voice.Cmd)
	root.Cmd.AddCommand(receipt.Cmd)
	root.Cmd.AddCommand(forecast.Cmd)
	root.Cmd.AddCommand(ask.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

// configureLogLevelDirectly sets the global log level for all logrus instances
// and returns the configured level
func configureLogLevelDirectly() logrus.Level {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}

	logrus.SetLevel(logLevel)
	return logLevel
}

func main() {
	if err := root.Cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
