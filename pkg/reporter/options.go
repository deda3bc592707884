package reporter

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"

	"github.com/yaklabco/gomdmath/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Format selects a reporter. It shares its values with the config file's
// format key.
type Format = config.OutputFormat

// Output formats.
const (
	FormatText  = config.FormatText
	FormatTable = config.FormatTable
	FormatJSON  = config.FormatJSON
)

//nolint:gochecknoglobals // Read-only lookup table.
var formats = []Format{FormatText, FormatTable, FormatJSON}

// ParseFormat parses a format name. The empty string selects text.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}
	format := Format(name)
	if !lo.Contains(formats, format) {
		return "", fmt.Errorf("unknown format %q; valid formats: text, table, json", name)
	}
	return format, nil
}

// Options configures reporter behavior.
type Options struct {
	// Writer receives the report. Nil means os.Stdout.
	Writer io.Writer

	Format Format

	// Color is "auto", "always" or "never".
	Color string

	// ShowSummary appends run statistics after the file list.
	ShowSummary bool

	// Verbose lists every file, including unchanged ones, and uses the
	// multi-line summary.
	Verbose bool

	// Compact minifies JSON output.
	Compact bool

	// WorkingDir shortens reported paths to be relative to it.
	WorkingDir string
}

// DefaultOptions returns Options for a text report on stdout.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		Format:      FormatText,
		Color:       "auto",
		ShowSummary: true,
	}
}
