// Package logging centralizes slog construction and the structured field
// vocabulary shared by the pipeline (job_id, stage, slide, component).
//
// Output format defaults to console when stdout is a terminal and JSON
// otherwise; both honor the configured level and optional log-file output.
package logging
