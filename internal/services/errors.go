package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolUnavailable indicates a required external program was not found.
	ErrToolUnavailable = errors.New("tool unavailable")
	// ErrToolTimeout indicates an external invocation exceeded its deadline.
	ErrToolTimeout = errors.New("tool timeout")
	// ErrToolExecution indicates an external program exited non-zero.
	ErrToolExecution = errors.New("tool execution failed")
	// ErrAssetMissing indicates an expected slide image or audio file is absent.
	ErrAssetMissing = errors.New("asset missing")
	// ErrPackageCorrupt indicates the deck archive or its markup failed to parse.
	ErrPackageCorrupt = errors.New("package corrupt")
	// ErrNoOutput indicates a stage produced zero usable results where at
	// least one was required.
	ErrNoOutput = errors.New("no output produced")
	// ErrValidation indicates caller-supplied input failed validation.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration indicates the loaded configuration is unusable.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrToolExecution
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails carries the user-facing portion of a stage error.
type ErrorDetails struct {
	Message string
}

// Details extracts a human-readable message from a stage error, stripping the
// sentinel prefix when present.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	message := err.Error()
	for _, marker := range []error{
		ErrToolUnavailable,
		ErrToolTimeout,
		ErrToolExecution,
		ErrAssetMissing,
		ErrPackageCorrupt,
		ErrNoOutput,
		ErrValidation,
		ErrConfiguration,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(message, prefix) {
			message = strings.TrimPrefix(message, prefix)
			break
		}
	}
	return ErrorDetails{Message: strings.TrimSpace(message)}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
