package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/gomdmath/pkg/runner"
)

// Exit codes for gomdmath.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitRenderErrors indicates that one or more files could not be rendered.
	ExitRenderErrors = 1

	// ExitFallbacks indicates that math spans fell back to source (when strict mode).
	ExitFallbacks = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrRenderFailed is returned when files could not be rendered.
	ErrRenderFailed = errors.New("render failed")

	// ErrFallbacks is returned in strict mode when math spans fell back.
	ErrFallbacks = errors.New("math spans fell back to source")

	// ErrInvalidUsage is returned for bad flag combinations.
	ErrInvalidUsage = errors.New("invalid usage")
)

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	switch {
	case result == nil:
		return ExitSuccess
	case result.HasErrors():
		return ExitRenderErrors
	case strict && result.HasFallbacks():
		return ExitFallbacks
	default:
		return ExitSuccess
	}
}

// ExitCodeFromError maps a command error to a process exit code.
func ExitCodeFromError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrRenderFailed):
		return ExitRenderErrors
	case errors.Is(err, ErrFallbacks):
		return ExitFallbacks
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// errorFromExitCode is the inverse of ExitCodeFromResult for a finished run.
func errorFromExitCode(code int) error {
	switch code {
	case ExitRenderErrors:
		return ErrRenderFailed
	case ExitFallbacks:
		return ErrFallbacks
	default:
		return nil
	}
}

// IsReported reports whether err only signals an exit code for problems the
// command has already printed.
func IsReported(err error) bool {
	return errors.Is(err, ErrRenderFailed) || errors.Is(err, ErrFallbacks)
}
