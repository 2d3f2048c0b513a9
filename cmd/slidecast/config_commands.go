package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slidecast/internal/config"
)

func newConfigCommand(appCtx *appContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(appCtx))
	configCmd.AddCommand(newConfigValidateCommand(appCtx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if err := config.WriteSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the paths section before running slidecast.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appCtx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n\n", appCtx.cfgPath)
			fmt.Fprintf(out, "Inbox:      %s\n", cfg.Paths.InboxDir)
			fmt.Fprintf(out, "Output:     %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "Work:       %s\n", cfg.Paths.WorkDir)
			fmt.Fprintf(out, "Logs:       %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Resolution: %dx%d @ %d DPI\n", cfg.Video.Width, cfg.Video.Height, cfg.Video.DPI)
			fmt.Fprintf(out, "FFmpeg:     %s\n", cfg.Tools.FFmpeg)
			fmt.Fprintf(out, "FFprobe:    %s\n", cfg.Tools.FFprobe)
			fmt.Fprintf(out, "LibreOffice: %s\n", cfg.Tools.LibreOffice)
			if cfg.Status.Endpoint != "" {
				fmt.Fprintf(out, "Status sink: %s\n", cfg.Status.Endpoint)
			}
			if cfg.Notifications.NtfyTopic != "" {
				fmt.Fprintf(out, "Ntfy topic:  %s\n", cfg.Notifications.NtfyTopic)
			}
			return nil
		},
	}
}

func newConfigValidateCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(*appCtx.configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
