package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table formatting constants.
const (
	tablePadding     = 2
	minFirstWidth    = 12
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// RowStatus selects the styling of a table row.
type RowStatus int

// Row statuses.
const (
	RowOK RowStatus = iota
	RowWarn
	RowError
)

// TableRow is a single row of cells.
type TableRow struct {
	Cells  []string
	Status RowStatus
}

// TableFormatter formats rows as an aligned, styled table. The first column
// is treated as a path: when the table is wider than the terminal it is
// truncated from the left so the file name stays visible.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

// FormatTable formats headers and rows. Numeric-looking columns are
// right-aligned. It returns "" when there are no rows.
func (t *TableFormatter) FormatTable(headers []string, rows []TableRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.columnWidths(headers, rows)
	right := rightAligned(headers, rows)

	var builder strings.Builder

	builder.WriteString(t.styles.TableHeader.Render(t.formatCells(headers, widths, right)))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(headers))
		copy(cells, row.Cells)
		cells[0] = truncateFilePath(cells[0], widths[0])
		for i := 1; i < len(cells); i++ {
			cells[i] = truncateString(cells[i], widths[i])
		}
		builder.WriteString(t.rowStyle(row.Status).Render(t.formatCells(cells, widths, right)))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths, lightSeparator))
	builder.WriteString("\n")

	return builder.String()
}

// columnWidths sizes each column to its widest cell, then shrinks the first
// column to fit the terminal.
func (t *TableFormatter) columnWidths(headers []string, rows []TableRow) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row.Cells) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row.Cells[i]))
		}
	}

	total := t.totalWidth(widths)
	if total > t.termWidth {
		widths[0] = max(minFirstWidth, widths[0]-(total-t.termWidth))
	}
	return widths
}

func (t *TableFormatter) totalWidth(widths []int) int {
	total := 1 + tablePadding*(len(widths)-1)
	for _, w := range widths {
		total += w
	}
	return total
}

func (t *TableFormatter) formatCells(cells []string, widths []int, right []bool) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if right[i] {
			parts[i] = fmt.Sprintf("%*s", w, cell)
		} else {
			parts[i] = fmt.Sprintf("%-*s", w, cell)
		}
	}
	return " " + strings.Join(parts, strings.Repeat(" ", tablePadding))
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths []int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, t.totalWidth(widths)))
}

func (t *TableFormatter) rowStyle(status RowStatus) lipgloss.Style {
	switch status {
	case RowError:
		return t.styles.TableErrorRow
	case RowWarn:
		return t.styles.TableWarnRow
	default:
		return lipgloss.NewStyle()
	}
}

// rightAligned marks columns whose cells all start with a digit.
func rightAligned(headers []string, rows []TableRow) []bool {
	right := make([]bool, len(headers))
	for i := 1; i < len(headers); i++ {
		right[i] = true
		for _, row := range rows {
			if i < len(row.Cells) && (row.Cells[i] == "" || row.Cells[i][0] < '0' || row.Cells[i][0] > '9') {
				right[i] = false
				break
			}
		}
	}
	return right
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
