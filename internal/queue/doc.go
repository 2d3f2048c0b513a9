// Package queue persists conversion jobs in SQLite and tracks their progress
// through the pipeline stages.
package queue
