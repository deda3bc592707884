package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdmath/internal/cli"
	"github.com/yaklabco/gomdmath/pkg/reporter"
)

const testDocument = "Energy $E=mc^2$ and a price of $5.\n"

// execute runs the root command with a private config file and returns
// stdout, stderr and the command error.
func execute(t *testing.T, stdin io.Reader, configYAML string, args ...string) (string, string, error) {
	t.Helper()

	cfgFile := filepath.Join(t.TempDir(), "gomdmath.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(configYAML), 0o644))

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append([]string{"--config", cfgFile, "--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIntegration_RenderStdout(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, testDocument)

	stdout, stderr, err := execute(t, nil, "flavor: commonmark\n", "render", "--stdout", doc)
	require.NoError(t, err)

	assert.Contains(t, stdout, "math-rendered")
	assert.Contains(t, stdout, "E=mc^{2}")
	assert.Contains(t, stdout, "$5.", "currency is not math")
	assert.Contains(t, stderr, "1 file rendered")

	_, statErr := os.Stat(strings.TrimSuffix(doc, ".md") + ".html")
	assert.True(t, os.IsNotExist(statErr), "--stdout must not write files")
}

func TestIntegration_RenderWritesOutputDir(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, testDocument)
	site := filepath.Join(t.TempDir(), "site")

	stdout, _, err := execute(t, nil, "flavor: gfm\n", "render", "--out-dir", site, doc)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 written")

	html, err := os.ReadFile(filepath.Join(site, "doc.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "math-rendered")

	stdout, _, err = execute(t, nil, "flavor: gfm\n", "render", "--out-dir", site, doc)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 unchanged")
}

func TestIntegration_RenderStrictFallback(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, "Broken $\\frac{1}{2$ here.\n")

	stdout, _, err := execute(t, nil, "renderer: client\n", "render", "--stdout", doc)
	require.NoError(t, err, "fallbacks are not errors without --strict")
	assert.Contains(t, stdout, "math-fallback")

	_, _, err = execute(t, nil, "renderer: client\n", "render", "--stdout", "--strict", doc)
	require.ErrorIs(t, err, cli.ErrFallbacks)
	assert.Equal(t, cli.ExitFallbacks, cli.ExitCodeFromError(err))
}

func TestIntegration_RenderJSON(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, testDocument)

	stdout, _, err := execute(t, nil, "format: json\n", "render", doc)
	require.NoError(t, err)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &output))
	require.Len(t, output.Files, 1)
	assert.Equal(t, reporter.StatusWritten, output.Files[0].Status)
	assert.Equal(t, 1, output.Summary.SpansTotal)
	assert.Zero(t, output.Summary.SpansFailed)
}

func TestIntegration_InvalidConfig(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, testDocument)

	_, _, err := execute(t, nil, "renderer: mathjax\n", "render", doc)
	require.ErrorIs(t, err, cli.ErrInvalidConfig)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCodeFromError(err))
	assert.Contains(t, err.Error(), "renderer")
}

func TestIntegration_Stream(t *testing.T) {
	t.Parallel()

	input := "Area $\\pi r^2$.\n"

	final, _, err := execute(t, strings.NewReader(input), "", "stream")
	require.NoError(t, err)
	assert.Contains(t, final, "math-rendered")
	assert.Contains(t, final, `\pi r^{2}`)

	updates, _, err := execute(t, strings.NewReader(input), "", "stream", "--updates", "--chunk", "2")
	require.NoError(t, err)
	assert.Contains(t, updates, "#1 ")
	assert.Contains(t, updates, " math @")
	assert.Contains(t, updates, " finish @")
}

func TestIntegration_StreamRejectsBadChunk(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, strings.NewReader("x"), "", "stream", "--chunk", "0")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}

func TestIntegration_Normalize(t *testing.T) {
	t.Parallel()

	input := "<p>see $x$ and <code>$y$</code></p>\n"

	stdout, _, err := execute(t, strings.NewReader(input), "", "normalize")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(stdout, "math-rendered"))
	assert.Contains(t, stdout, "<code>$y$</code>")

	again, _, err := execute(t, strings.NewReader(stdout), "", "normalize")
	require.NoError(t, err)
	assert.Equal(t, stdout, again)
}

func TestIntegration_Macros(t *testing.T) {
	t.Parallel()

	configYAML := "macros:\n  '\\RR': '\\mathbb{R}'\n"

	stdout, _, err := execute(t, nil, configYAML, "macros", "--format", "flags")
	require.NoError(t, err)
	assert.Contains(t, stdout, `\grad:\nabla`+"\n")
	assert.Contains(t, stdout, `\RR:\mathbb{R}`+"\n")

	stdout, _, err = execute(t, nil, configYAML, "macros")
	require.NoError(t, err)
	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, `\abs`)

	stdout, _, err = execute(t, nil, configYAML, "macros", "--format", "json")
	require.NoError(t, err)
	var table map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &table))
	assert.Contains(t, table, `\RR`)

	_, _, err = execute(t, nil, configYAML, "macros", "--format", "xml")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}

func TestIntegration_Bench(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, strings.NewReader(testDocument), "",
		"bench", "--renderers", "client,image", "--iterations", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "RENDERER")
	assert.Contains(t, stdout, "client")
	assert.Contains(t, stdout, "image")

	_, _, err = execute(t, strings.NewReader(testDocument), "", "bench", "--renderers", "mathjax")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}

func TestIntegration_ConfigShow(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, nil, "renderer: image\n", "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Effective gomdmath configuration")
	assert.Contains(t, stdout, "gomdmath.yml")
	assert.Contains(t, stdout, "renderer: image")

	stdout, _, err = execute(t, nil, "", "config", "--env")
	require.NoError(t, err)
	assert.Contains(t, stdout, "GOMDMATH_RENDERER")
	assert.Contains(t, stdout, "GOMDMATH_FLUSH_EVERY")
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "project.yml")

	_, _, err := execute(t, nil, "", "init", "--output", path)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), "# gomdmath configuration")

	_, _, err = execute(t, nil, "", "init", "--output", path)
	require.Error(t, err, "existing files are kept without --force")

	_, _, err = execute(t, nil, "", "init", "--output", path, "--force", "--full")
	require.NoError(t, err)

	// The generated file is itself a valid config.
	_, _, err = execute(t, nil, string(written), "config")
	require.NoError(t, err)

	stdout, _, err := execute(t, nil, "", "init", "--print", "--format", "json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))

	_, _, err = execute(t, nil, "", "init", "--format", "json")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}
