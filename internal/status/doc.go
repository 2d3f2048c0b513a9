// Package status pushes job progress to an external tracking endpoint.
// Reporting is best effort; the pipeline never blocks on the tracker.
package status
