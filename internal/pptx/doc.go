// Package pptx reads and mutates presentation deck archives. A deck is an
// OPC zip package; edits happen on a materialized worktree and a fresh
// archive is written back, never mutating the source in place.
package pptx
