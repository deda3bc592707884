package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/yaklabco/gomdmath/internal/ui/pretty"
	"github.com/yaklabco/gomdmath/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No Markdown files found."))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		r.reportFile(file)
	}

	if r.opts.ShowSummary {
		if r.opts.Verbose {
			fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))
		} else {
			fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
		}
	}

	return problems(result), nil
}

// reportFile writes one line for a file. Unchanged and unwritten files are
// listed only in verbose mode.
func (r *TextReporter) reportFile(file runner.FileOutcome) {
	path := r.styles.FilePath.Render(displayPath(file.Path, r.opts.WorkingDir))

	switch Status(file) {
	case StatusError:
		fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)))
		return
	case StatusSkipped:
		fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Warning.Render("skipped, source changed during render"))
		return
	case StatusWritten:
	default:
		if !r.opts.Verbose && file.Failed == 0 {
			return
		}
	}

	line := path
	if file.Output != "" {
		line += r.styles.Arrow.Render(" -> ") + r.styles.Output.Render(displayPath(file.Output, r.opts.WorkingDir))
	}

	detail := english.Plural(file.Spans, "span", "")
	if file.Failed > 0 {
		detail += ", " + r.styles.Fallback.Render(fmt.Sprintf("%d fell back", file.Failed))
	}
	detail += ", " + humanize.Bytes(uint64(file.Bytes)) //nolint:gosec // non-negative
	if !file.Written && file.Output != "" {
		detail += ", " + StatusUnchanged
	}

	fmt.Fprintf(r.bw, "%s %s\n", line, r.styles.Dim.Render("("+detail+")"))
}
