// Package ffprobe provides a typed wrapper around ffprobe JSON output,
// used by the segment synthesizer to align video duration to narration
// audio with fractional precision.
package ffprobe
