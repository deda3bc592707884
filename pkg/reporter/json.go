package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yaklabco/gomdmath/pkg/runner"
)

// JSONVersion is the schema version of JSONOutput.
const JSONVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's outcome.
type JSONFileResult struct {
	Path       string  `json:"path"`
	Output     string  `json:"output,omitempty"`
	Status     string  `json:"status"`
	Spans      int     `json:"spans"`
	Failed     int     `json:"failed"`
	Bytes      int     `json:"bytes"`
	DurationMS float64 `json:"durationMs"`
	Error      string  `json:"error,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered int     `json:"filesDiscovered"`
	FilesRendered   int     `json:"filesRendered"`
	FilesWritten    int     `json:"filesWritten"`
	FilesUnchanged  int     `json:"filesUnchanged"`
	FilesSkipped    int     `json:"filesSkipped"`
	FilesErrored    int     `json:"filesErrored"`
	SpansTotal      int     `json:"spansTotal"`
	SpansFailed     int     `json:"spansFailed"`
	BytesWritten    int64   `json:"bytesWritten"`
	ElapsedMS       float64 `json:"elapsedMs"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return problems(result), nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: JSONVersion,
		Files:   make([]JSONFileResult, 0),
	}

	if result == nil {
		return output
	}

	output.Files = make([]JSONFileResult, 0, len(result.Files))
	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:       displayPath(file.Path, r.opts.WorkingDir),
			Output:     displayPath(file.Output, r.opts.WorkingDir),
			Status:     Status(file),
			Spans:      file.Spans,
			Failed:     file.Failed,
			Bytes:      file.Bytes,
			DurationMS: milliseconds(file.Duration),
		}
		if file.Error != nil {
			fileResult.Error = file.Error.Error()
		}
		output.Files = append(output.Files, fileResult)
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesDiscovered: stats.FilesDiscovered,
		FilesRendered:   stats.FilesRendered,
		FilesWritten:    stats.FilesWritten,
		FilesUnchanged:  stats.FilesUnchanged,
		FilesSkipped:    stats.FilesSkipped,
		FilesErrored:    stats.FilesErrored,
		SpansTotal:      stats.SpansTotal,
		SpansFailed:     stats.SpansFailed,
		BytesWritten:    stats.BytesWritten,
		ElapsedMS:       milliseconds(stats.Elapsed),
	}

	return output
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
