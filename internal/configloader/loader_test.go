package configloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yaklabco/gomdmath/pkg/config"
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}
	if result.Config.Flavor != config.FlavorCommonMark {
		t.Errorf("expected flavor %q, got %q", config.FlavorCommonMark, result.Config.Flavor)
	}
	if result.Config.Renderer != config.DefaultRenderer {
		t.Errorf("expected renderer %q, got %q", config.DefaultRenderer, result.Config.Renderer)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdmath.yml"), `
flavor: gfm
renderer: image
flush_every: 0
macros:
  \RR: \mathbb{R}
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorGFM {
		t.Errorf("expected flavor %q, got %q", config.FlavorGFM, cfg.Flavor)
	}
	if cfg.Renderer != "image" {
		t.Errorf("expected renderer image, got %q", cfg.Renderer)
	}
	if cfg.StreamFlushEvery() != 0 {
		t.Errorf("expected flush_every 0 to survive the merge, got %d", cfg.StreamFlushEvery())
	}
	if cfg.Macros[`\RR`] != `\mathbb{R}` {
		t.Errorf("expected macro \\RR, got %v", cfg.Macros)
	}
	// Unset fields keep their defaults.
	if cfg.Highlight != config.DefaultHighlight {
		t.Errorf("expected highlight %q, got %q", config.DefaultHighlight, cfg.Highlight)
	}
	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_ProjectConfigFoundUpward(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "docs", "notes")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, ".gomdmath.yaml"), "renderer: katex\nrenderer_command: katex\n")

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Renderer != "katex" {
		t.Errorf("expected renderer katex, got %q", result.Config.Renderer)
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdmath.yml"), "renderer: image\n")
	customPath := filepath.Join(tmpDir, "custom-config.yml")
	writeFile(t, customPath, "renderer: client\nrenderer_timeout: 2s\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = customPath

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Renderer != "client" {
		t.Errorf("expected explicit renderer client, got %q", result.Config.Renderer)
	}
	if result.Config.RendererTimeout != 2*time.Second {
		t.Errorf("expected timeout 2s, got %v", result.Config.RendererTimeout)
	}
	if result.Paths.Explicit != customPath {
		t.Errorf("expected explicit path %q, got %q", customPath, result.Paths.Explicit)
	}
}

func TestLoad_ExplicitConfigNotYAML(t *testing.T) {
	t.Parallel()

	opts := isolated(t.TempDir())
	opts.ExplicitPath = "settings.json"

	if _, err := Load(context.Background(), opts); err == nil {
		t.Fatal("expected error for non-YAML config path")
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdmath.yml"), "flavor: commonmark\njobs: 2\n")

	opts := isolated(tmpDir)
	opts.CLIConfig = &config.Config{
		Flavor: config.FlavorGFM,
		Jobs:   8,
		Stdout: true,
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Flavor != config.FlavorGFM {
		t.Errorf("expected flavor %q (CLI override), got %q", config.FlavorGFM, result.Config.Flavor)
	}
	if result.Config.Jobs != 8 {
		t.Errorf("expected jobs 8 (CLI override), got %d", result.Config.Jobs)
	}
	if !result.Config.Stdout {
		t.Error("expected stdout true (CLI override)")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{name: "flavor", content: "flavor: invalid-flavor\n", field: "flavor"},
		{name: "renderer", content: "renderer: mathjax\n", field: "renderer"},
		{name: "macro name", content: "macros:\n  \\1bad: x\n", field: "macros"},
		{name: "negative cadence", content: "flush_every: -1\n", field: "flush_every"},
		{name: "passthrough flag", content: "passthrough:\n  \"x --output\": /tmp/y\n", field: "passthrough"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, ".gomdmath.yml")
			writeFile(t, path, tt.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.field) || !strings.Contains(err.Error(), path) {
				t.Errorf("error %q should name field %q and file %q", err, tt.field, path)
			}
		})
	}
}

func TestLoad_KaTeXWithoutCommandWarns(t *testing.T) {
	t.Parallel()

	opts := isolated(t.TempDir())
	opts.CLIConfig = &config.Config{Renderer: "katex"}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, isolated(t.TempDir())); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GOMDMATH_RENDERER", "image")
	t.Setenv("GOMDMATH_FLUSH_EVERY", "0")
	t.Setenv("GOMDMATH_RENDERER_TIMEOUT", "750ms")
	t.Setenv("GOMDMATH_IGNORE", "drafts/**, ,vendor/**")

	cfg := config.NewConfig()
	if err := LoadFromEnv(cfg); err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Renderer != "image" {
		t.Errorf("expected renderer image, got %q", cfg.Renderer)
	}
	if cfg.StreamFlushEvery() != 0 {
		t.Errorf("expected flush_every 0, got %d", cfg.StreamFlushEvery())
	}
	if cfg.RendererTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", cfg.RendererTimeout)
	}
	if strings.Join(cfg.Ignore, "|") != "drafts/**|vendor/**" {
		t.Errorf("unexpected ignore list %v", cfg.Ignore)
	}
}

func TestLoadFromEnv_InvalidValue(t *testing.T) {
	t.Setenv("GOMDMATH_JOBS", "many")

	if err := LoadFromEnv(config.NewConfig()); err == nil {
		t.Fatal("expected error for non-integer jobs")
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	if len(vars) != len(envVars) {
		t.Errorf("expected %d variables, got %d", len(envVars), len(vars))
	}
	if EnvVarName("renderer") != "GOMDMATH_RENDERER" {
		t.Errorf("unexpected name %q", EnvVarName("renderer"))
	}
	if EnvVarName("stdout") != "" {
		t.Errorf("expected no variable for stdout, got %q", EnvVarName("stdout"))
	}
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	zero := 0
	base := config.NewConfig()
	base.Macros = map[string]string{`\a`: "1", `\b`: "2"}
	project := &config.Config{Macros: map[string]string{`\b`: "3"}, FlushEvery: &zero}
	cli := &config.Config{Renderer: "image"}

	got := MergeAll(base, project, cli)

	if got.Macros[`\a`] != "1" || got.Macros[`\b`] != "3" {
		t.Errorf("macros not deep merged: %v", got.Macros)
	}
	if got.StreamFlushEvery() != 0 {
		t.Errorf("expected flush_every 0, got %d", got.StreamFlushEvery())
	}
	if got.Renderer != "image" {
		t.Errorf("expected renderer image, got %q", got.Renderer)
	}
	if base.Macros[`\b`] != "2" {
		t.Error("merge mutated the base macro table")
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ProjectConfigName)
	if err := WriteConfig(context.Background(), path, []byte("flavor: gfm\n"), false); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}
	if err := WriteConfig(context.Background(), path, []byte("flavor: gfm\n"), false); err == nil {
		t.Error("expected refusal to overwrite without force")
	}
	if err := WriteConfig(context.Background(), path, []byte("flavor: commonmark\n"), true); err != nil {
		t.Errorf("WriteConfig(force) error = %v", err)
	}
}
