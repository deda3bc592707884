package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/yaklabco/gomdmath/pkg/runner"
)

const summaryDividerWidth = 40

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files rendered, 12 spans (1 fell back), 2 written (4.1 kB) in 18ms".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No Markdown files found") + "\n"
	}

	parts := []string{
		english.Plural(stats.FilesRendered, "file", "") + " rendered",
	}

	spans := english.Plural(stats.SpansTotal, "span", "")
	if stats.SpansFailed > 0 {
		spans += " (" + s.Fallback.Render(fmt.Sprintf("%d fell back", stats.SpansFailed)) + ")"
	}
	parts = append(parts, spans)

	if stats.FilesWritten > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d written", stats.FilesWritten))+
			s.Dim.Render(" ("+humanize.Bytes(uint64(stats.BytesWritten))+")")) //nolint:gosec // non-negative
	}
	if stats.FilesUnchanged > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d unchanged", stats.FilesUnchanged)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(english.Plural(stats.FilesErrored, "error", "")))
	}

	line := strings.Join(parts, ", ")
	if stats.Elapsed > 0 {
		line += s.Dim.Render(" in " + stats.Elapsed.Round(time.Millisecond).String())
	}
	return line + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files found:       " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesDiscovered)) + "\n")
	builder.WriteString("  Files rendered:    " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesRendered)) + "\n")

	if stats.FilesWritten > 0 {
		builder.WriteString("  Files written:     " +
			s.Success.Render(strconv.Itoa(stats.FilesWritten)) +
			s.Dim.Render(" ("+humanize.Bytes(uint64(stats.BytesWritten))+")") + "\n") //nolint:gosec // non-negative
	}
	if stats.FilesUnchanged > 0 {
		builder.WriteString("  Files unchanged:   " +
			s.SummaryValue.Render(strconv.Itoa(stats.FilesUnchanged)) + "\n")
	}
	if stats.FilesSkipped > 0 {
		builder.WriteString("  Files skipped:     " +
			s.Warning.Render(strconv.Itoa(stats.FilesSkipped)) + "\n")
	}
	if stats.FilesErrored > 0 {
		builder.WriteString("  Files errored:     " +
			s.Error.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Math spans:        " +
		s.SummaryValue.Render(humanize.Comma(int64(stats.SpansTotal))) + "\n")
	if stats.SpansFailed > 0 {
		builder.WriteString("    Fell back:       " +
			s.Fallback.Render(humanize.Comma(int64(stats.SpansFailed))) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Render failed for " + english.Plural(stats.FilesErrored, "file", "")))
	case stats.SpansFailed > 0:
		builder.WriteString(s.Warning.Render("Rendered with fallbacks"))
	default:
		builder.WriteString(s.Success.Render("All math rendered"))
	}
	builder.WriteString("\n")

	return builder.String()
}
