// Package reporter formats batch render results.
package reporter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/yaklabco/gomdmath/pkg/runner"
)

// Reporter formats and writes render results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of problems reported (errored files plus math
	// spans that fell back) and any write errors.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// problems counts errored files and fallback spans.
func problems(result *runner.Result) int {
	if result == nil {
		return 0
	}
	return result.Stats.FilesErrored + result.Stats.SpansFailed
}

// Status values describing a file outcome.
const (
	StatusError     = "error"
	StatusSkipped   = "skipped"
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusRendered  = "rendered"
)

// Status names what happened to a file.
func Status(file runner.FileOutcome) string {
	switch {
	case file.Error != nil:
		return StatusError
	case file.Skipped:
		return StatusSkipped
	case file.Written:
		return StatusWritten
	case file.Output != "":
		return StatusUnchanged
	default:
		return StatusRendered
	}
}

// displayPath makes path relative to workDir when possible.
func displayPath(path, workDir string) string {
	if workDir == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || len(rel) >= len(path) {
		return path
	}
	return rel
}
