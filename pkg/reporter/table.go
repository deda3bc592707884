package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/yaklabco/gomdmath/internal/ui/pretty"
	"github.com/yaklabco/gomdmath/pkg/runner"
)

const (
	// defaultTermWidth is used when terminal width cannot be determined.
	defaultTermWidth = 100

	durationPrecision = time.Microsecond
)

// tableHeaders are the columns of the file table.
//
//nolint:gochecknoglobals // Read-only column list.
var tableHeaders = []string{"FILE", "SPANS", "FAILED", "SIZE", "TIME", "STATUS"}

// TableReporter formats results as a styled table with color-coded rows.
type TableReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTableReporter creates a new table reporter.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	return &TableReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, TerminalWidth(opts.Writer)),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
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

	rows := make([]pretty.TableRow, 0, len(result.Files))
	for _, file := range result.Files {
		rows = append(rows, r.row(file))
	}
	fmt.Fprint(r.bw, r.formatter.FormatTable(tableHeaders, rows))

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return problems(result), nil
}

func (r *TableReporter) row(file runner.FileOutcome) pretty.TableRow {
	status := Status(file)
	row := pretty.TableRow{
		Cells: []string{
			displayPath(file.Path, r.opts.WorkingDir),
			strconv.Itoa(file.Spans),
			strconv.Itoa(file.Failed),
			humanize.Bytes(uint64(file.Bytes)), //nolint:gosec // non-negative
			file.Duration.Round(durationPrecision).String(),
			status,
		},
	}

	switch {
	case status == StatusError:
		row.Status = pretty.RowError
	case status == StatusSkipped || file.Failed > 0:
		row.Status = pretty.RowWarn
	}
	return row
}

// TerminalWidth attempts to get the terminal width from the writer.
func TerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // fd fits in int
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
