package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"price-tracker/config"
	"price-tracker/internal/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Track product prices on Indian fashion stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// setup loads config and the logger for commands that need them.
	setup := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		level := cfg.LogLevel
		if debug {
			level = "debug"
		}
		log, err := logger.New(level)
		if err != nil {
			return nil, nil, fmt.Errorf("build logger: %w", err)
		}
		return cfg, log, nil
	}

	root.AddCommand(
		newServeCmd(setup),
		newSweepCmd(setup),
		newDetectCmd(),
	)
	return root
}
