package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidecast/internal/config"
	"slidecast/internal/toolexec"
)

func newDepsCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of required external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appCtx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := toolexec.CheckBinaries(toolRequirements(cfg.Tools))

			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					if status.Optional {
						state = "missing (optional)"
					} else {
						state = "missing"
						missingRequired = true
					}
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}

			out := renderTable(
				[]tableColumn{{title: "Tool"}, {title: "Command"}, {title: "Status"}, {title: "Notes"}},
				rows,
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if missingRequired {
				return fmt.Errorf("required tools are missing")
			}
			return nil
		},
	}
}

func toolRequirements(tools config.Tools) []toolexec.Requirement {
	return []toolexec.Requirement{
		{
			Name:        "FFmpeg",
			Command:     tools.FFmpeg,
			Description: "Renders per-slide segments and concatenates the final video",
		},
		{
			Name:        "FFprobe",
			Command:     tools.FFprobe,
			Description: "Measures narration audio durations",
		},
		{
			Name:        "LibreOffice",
			Command:     tools.LibreOffice,
			Description: "Converts decks to PDF for rasterization",
			Optional:    true,
		},
		{
			Name:        "pdftoppm",
			Command:     tools.PDFToPPM,
			Description: "Rasterizes PDF pages to slide images",
			Optional:    true,
		},
		{
			Name:        "ImageMagick",
			Command:     tools.Magick,
			Description: "Fallback PDF rasterizer",
			Optional:    true,
		},
	}
}
