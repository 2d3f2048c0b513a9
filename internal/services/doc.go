// Package services provides shared error classification and context helpers
// used by every pipeline stage.
//
// Stage errors are tagged with sentinel markers (ErrToolUnavailable,
// ErrToolTimeout, ErrToolExecution, ErrAssetMissing, ErrPackageCorrupt,
// ErrNoOutput) via Wrap so the orchestrator can distinguish per-slide
// warnings from job-fatal failures without string matching.
package services
