package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"slidecast/internal/config"
	"slidecast/internal/logging"
)

// appContext carries lazily loaded configuration and the shared logger
// across subcommands.
type appContext struct {
	configFlag *string
	cfg        *config.Config
	cfgPath    string
	logger     *slog.Logger
}

func (a *appContext) ensureConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, path, _, err := config.Load(*a.configFlag)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.cfgPath = path
	return cfg, nil
}

func (a *appContext) ensureLogger() (*slog.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}
	cfg, err := a.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	a.logger = logger
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := &appContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "slidecast",
		Short:         "Convert slide decks into narrated learning-module videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))

	return rootCmd
}
