package config

import (
	"fmt"
	"strings"
)

// Validate checks invariants a usable configuration must satisfy.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.OutputDir == "" {
		problems = append(problems, "paths.output_dir must be set")
	}
	if c.Paths.WorkDir == "" {
		problems = append(problems, "paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		problems = append(problems, "tools.ffmpeg must be set")
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		problems = append(problems, "tools.ffprobe must be set")
	}
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		problems = append(problems, "video.width and video.height must be positive")
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		problems = append(problems, "video.width and video.height must be even for yuv420p output")
	}
	if c.Video.DPI <= 0 {
		problems = append(problems, "video.dpi must be positive")
	}
	for name, value := range map[string]int{
		"tools.convert_timeout": c.Tools.ConvertTimeout,
		"tools.render_timeout":  c.Tools.RenderTimeout,
		"tools.concat_timeout":  c.Tools.ConcatTimeout,
		"tools.probe_timeout":   c.Tools.ProbeTimeout,
	} {
		if value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
