package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/yaklabco/gomdmath/internal/cli"
	"github.com/yaklabco/gomdmath/pkg/runner"
)

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{
		Version: "test-version",
		Commit:  "test-commit",
		Date:    "test-date",
	}

	cmd := cli.NewRootCommand(info)

	if cmd == nil {
		t.Fatal("NewRootCommand returned nil")
	}

	if cmd.Use != "gomdmath" {
		t.Errorf("expected Use to be 'gomdmath', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	expectedSubcommands := []string{"render", "stream", "normalize", "bench", "macros", "config", "init", "version"}

	for _, name := range expectedSubcommands {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Errorf("expected subcommand %q to exist, got error: %v", name, err)
			continue
		}

		if subCmd.Name() != name {
			t.Errorf("expected subcommand name %q, got %q", name, subCmd.Name())
		}
	}
}

func TestCommandFlags(t *testing.T) {
	t.Parallel()

	expected := map[string][]string{
		"render": {
			"out-dir", "jobs", "format", "renderer", "renderer-command", "flavor", "highlight",
			"include", "ignore", "follow-symlinks", "stdout", "force", "strict", "verbose", "compact",
		},
		"stream":    {"file", "chunk", "delay", "updates", "coalesce", "renderer", "flush-every"},
		"normalize": {"file", "renderer"},
		"bench":     {"renderers", "iterations", "show-html"},
		"macros":    {"format"},
		"config":    {"env"},
		"init":      {"force", "full", "print", "format", "output"},
	}

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	for name, flags := range expected {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Fatalf("%s command not found: %v", name, err)
		}
		for _, flagName := range flags {
			if subCmd.Flags().Lookup(flagName) == nil {
				t.Errorf("expected flag %q to exist on %s command", flagName, name)
			}
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	for _, flagName := range []string{"debug", "config", "color"} {
		if cmd.PersistentFlags().Lookup(flagName) == nil {
			t.Errorf("expected global flag %q to exist", flagName)
		}
	}
}

func TestVersionCommandShort(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2024-01-01"})
	cmd.SetArgs([]string{"version", "--short"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if got := out.String(); got != "1.2.3\n" {
		t.Errorf("version --short = %q, want %q", got, "1.2.3\n")
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{
		Version: "1.2.3",
		Commit:  "abc123",
		Date:    "2024-01-01",
	}

	cmd := cli.NewRootCommand(info)
	cmd.SetArgs([]string{"version"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	for _, want := range []string{"gomdmath", "1.2.3", "abc123", "2024-01-01"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("version output %q does not contain %q", out.String(), want)
		}
	}
}

func TestRootHelpShowsConfiguration(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})
	cmd.SetArgs([]string{"--help"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}

	for _, want := range []string{"Available Commands:", "render", "Configuration:", ".gomdmath.yml"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help output does not contain %q", want)
		}
	}
}

func TestRenderCommandAcceptsArbitraryArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})
	renderCmd, _, err := cmd.Find([]string{"render"})
	if err != nil {
		t.Fatalf("render command not found: %v", err)
	}

	if err := renderCmd.Args(renderCmd, []string{"file1.md", "file2.md", "docs/"}); err != nil {
		t.Errorf("render command should accept arbitrary args, got error: %v", err)
	}
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *runner.Result
		strict bool
		want   int
	}{
		{name: "nil result", want: cli.ExitSuccess},
		{name: "clean", result: &runner.Result{}, want: cli.ExitSuccess},
		{name: "errors", result: &runner.Result{Stats: runner.Stats{FilesErrored: 1}}, want: cli.ExitRenderErrors},
		{name: "fallbacks", result: &runner.Result{Stats: runner.Stats{SpansFailed: 2}}, want: cli.ExitSuccess},
		{name: "fallbacks strict", result: &runner.Result{Stats: runner.Stats{SpansFailed: 2}}, strict: true, want: cli.ExitFallbacks},
		{
			name:   "errors win over fallbacks",
			result: &runner.Result{Stats: runner.Stats{FilesErrored: 1, SpansFailed: 2}},
			strict: true,
			want:   cli.ExitRenderErrors,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cli.ExitCodeFromResult(tt.result, tt.strict); got != tt.want {
				t.Errorf("ExitCodeFromResult() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCodeFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{err: nil, want: cli.ExitSuccess},
		{err: cli.ErrRenderFailed, want: cli.ExitRenderErrors},
		{err: cli.ErrFallbacks, want: cli.ExitFallbacks},
		{err: fmt.Errorf("%w: bad flag", cli.ErrInvalidUsage), want: cli.ExitInvalidUsage},
		{err: errors.Join(cli.ErrInvalidConfig, errors.New("flavor")), want: cli.ExitConfigError},
		{err: fmt.Errorf("read input: %w", fs.ErrNotExist), want: cli.ExitIOError},
		{err: errors.New("boom"), want: cli.ExitInternalError},
	}

	for _, tt := range tests {
		if got := cli.ExitCodeFromError(tt.err); got != tt.want {
			t.Errorf("ExitCodeFromError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	if !cli.IsReported(cli.ErrFallbacks) || cli.IsReported(cli.ErrInvalidUsage) {
		t.Error("IsReported should only match render problems")
	}
}
