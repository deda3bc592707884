package runner

import "time"

// FileOutcome is the result of rendering one source file.
type FileOutcome struct {
	// Path is the source file.
	Path string

	// Output is the rendered file's path.
	Output string

	// HTML is the rendered document, kept only when Options.NoWrite is set.
	HTML string

	// Spans and Failed count math spans and those that fell back.
	Spans  int
	Failed int

	// Bytes is the size of the rendered document.
	Bytes int

	// Written is true if Output was (re)written.
	Written bool

	// Skipped is true if the source changed while it was being rendered.
	Skipped bool

	// Duration is the time spent rendering.
	Duration time.Duration

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesRendered   int
	FilesWritten    int
	FilesUnchanged  int
	FilesSkipped    int
	FilesErrored    int

	SpansTotal  int
	SpansFailed int

	BytesWritten int64
	Elapsed      time.Duration
}

// Result is the overall runner result.
type Result struct {
	// Files holds one outcome per discovered file, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasErrors reports whether any file could not be rendered.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

// HasFallbacks reports whether any math span failed to render.
func (r *Result) HasFallbacks() bool {
	return r != nil && r.Stats.SpansFailed > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	switch {
	case outcome.Error != nil:
		r.Stats.FilesErrored++
		return
	case outcome.Skipped:
		r.Stats.FilesSkipped++
		return
	}

	r.Stats.FilesRendered++
	r.Stats.SpansTotal += outcome.Spans
	r.Stats.SpansFailed += outcome.Failed

	if outcome.Written {
		r.Stats.FilesWritten++
		r.Stats.BytesWritten += int64(outcome.Bytes)
	} else if outcome.Output != "" {
		r.Stats.FilesUnchanged++
	}
}
