// Package toolexec is the thin wrapper every stage uses to run external
// conversion and encoding commands with a bounded timeout and captured
// output, plus availability probing for the tool fallback chains.
package toolexec
