package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdmath/pkg/reporter"
	"github.com/yaklabco/gomdmath/pkg/runner"
)

var workDir = filepath.FromSlash("/work")

func path(name string) string {
	return filepath.Join(workDir, name)
}

// createTestResult returns a run with one written file, one unchanged file
// with a fallback span, and one error.
func createTestResult() *runner.Result {
	return &runner.Result{
		Files: []runner.FileOutcome{
			{Path: path("a.md"), Output: path("a.html"), Spans: 3, Bytes: 2048, Written: true, Duration: time.Millisecond},
			{Path: path("b.md"), Output: path("b.html"), Spans: 1, Failed: 1, Bytes: 100},
			{Path: path("c.md"), Error: errors.New("boom")},
		},
		Stats: runner.Stats{
			FilesDiscovered: 3,
			FilesRendered:   2,
			FilesWritten:    1,
			FilesUnchanged:  1,
			FilesErrored:    1,
			SpansTotal:      4,
			SpansFailed:     1,
			BytesWritten:    2048,
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "table", input: "table", want: reporter.FormatTable},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  reporter.Format
		wantErr bool
	}{
		{name: "text reporter", format: reporter.FormatText},
		{name: "table reporter", format: reporter.FormatTable},
		{name: "json reporter", format: reporter.FormatJSON},
		{name: "empty defaults to text", format: ""},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			rep, err := reporter.New(reporter.Options{Writer: &buf, Format: tt.format, Color: "never"})
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, rep)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rep)
		})
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	result := createTestResult()
	assert.Equal(t, reporter.StatusWritten, reporter.Status(result.Files[0]))
	assert.Equal(t, reporter.StatusUnchanged, reporter.Status(result.Files[1]))
	assert.Equal(t, reporter.StatusError, reporter.Status(result.Files[2]))
	assert.Equal(t, reporter.StatusSkipped, reporter.Status(runner.FileOutcome{Skipped: true}))
	assert.Equal(t, reporter.StatusRendered, reporter.Status(runner.FileOutcome{Spans: 1}))
}

func TestTextReporter_NilResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, "No Markdown files found.\n", buf.String())
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
		WorkingDir:  workDir,
	})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"a.md -> a.html (3 spans, 2.0 kB)",
		"b.md -> b.html (1 span, 1 fell back, 100 B, unchanged)",
		"c.md: error: boom",
		"2 files rendered, 4 spans (1 fell back), 1 written (2.0 kB), 1 unchanged, 1 error",
	}, lines)
}

func TestTextReporter_QuietHidesCleanUnchangedFiles(t *testing.T) {
	t.Parallel()

	result := &runner.Result{
		Files: []runner.FileOutcome{{Path: path("a.md"), Output: path("a.html"), Spans: 2}},
		Stats: runner.Stats{FilesDiscovered: 1, FilesRendered: 1, FilesUnchanged: 1, SpansTotal: 2},
	}

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", WorkingDir: workDir})
	_, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	buf.Reset()
	rep = reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		Verbose:     true,
		ShowSummary: true,
		WorkingDir:  workDir,
	})
	_, err = rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "a.md -> a.html (2 spans, 0 B, unchanged)")
	assert.Contains(t, buf.String(), "All math rendered")
}

func TestTableReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTableReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
		WorkingDir:  workDir,
	})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	output := buf.String()
	assert.Contains(t, output, "FILE")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "2.0 kB")
	assert.Contains(t, output, "1ms")
	assert.Contains(t, output, "written")
	assert.Contains(t, output, "unchanged")
	assert.Contains(t, output, "error")
	assert.Contains(t, output, "2 files rendered")
}

func TestTableReporter_EmptyResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTableReporter(reporter.Options{Writer: &buf, Color: "never"})

	count, err := rep.Report(context.Background(), &runner.Result{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, buf.String())
}

func TestJSONReporter_NilResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, reporter.JSONVersion, output.Version)
	assert.Empty(t, output.Files)
	assert.Contains(t, buf.String(), `"files": []`)
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, WorkingDir: workDir})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Files, 3)
	assert.Equal(t, reporter.JSONFileResult{
		Path:       "a.md",
		Output:     "a.html",
		Status:     reporter.StatusWritten,
		Spans:      3,
		Bytes:      2048,
		DurationMS: 1,
	}, output.Files[0])
	assert.Equal(t, reporter.StatusUnchanged, output.Files[1].Status)
	assert.Equal(t, 1, output.Files[1].Failed)
	assert.Equal(t, "boom", output.Files[2].Error)
	assert.Empty(t, output.Files[2].Output)

	assert.Equal(t, 3, output.Summary.FilesDiscovered)
	assert.Equal(t, 4, output.Summary.SpansTotal)
	assert.Equal(t, 1, output.Summary.SpansFailed)
	assert.Equal(t, int64(2048), output.Summary.BytesWritten)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})

	_, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
}
