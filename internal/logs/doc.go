// Package logs reads the slidecast service log for the CLI.
//
// It supports fetching the trailing lines of the log and incremental polling
// from a saved offset, which backs the follow mode of the logs command.
package logs
