// Package main provides the sentiment classifier CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/born-ml/sentiment/internal/config"
	"github.com/born-ml/sentiment/internal/logger"
)

// globalFlags are shared by every sub-command.
type globalFlags struct {
	configFile string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "sentiment",
		Short:         "Train and serve an RNN sentiment classifier",
		Long:          "Train, inspect and serve an LSTM or tanh RNN binary sentiment classifier stored as a .born file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		trainCmd(g),
		predictCmd(g),
		serveCmd(g),
		inspectCmd(),
		versionCmd(),
	)
	return rootCmd
}

// load reads the config file and builds the logger for a command.
func (g *globalFlags) load(cmd *cobra.Command) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return cfg, nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	log, err := logger.NewWithOutput(cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return cfg, nil, fmt.Errorf("log: %w", err)
	}
	return cfg, log, nil
}
