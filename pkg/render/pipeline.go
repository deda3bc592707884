package render

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/pkg/config"
	"github.com/yaklabco/gomdmath/pkg/highlight"
	"github.com/yaklabco/gomdmath/pkg/macros"
	"github.com/yaklabco/gomdmath/pkg/markdown"
	"github.com/yaklabco/gomdmath/pkg/mathrender"
)

// MarkdownEngine turns Markdown into HTML, leaving math delimiters and
// their bodies intact in the output.
type MarkdownEngine interface {
	Render(ctx context.Context, raw string) (string, error)
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	// Name labels the pipeline in comparisons and logs. Defaults to the
	// math renderer's name.
	Name string

	// Engine renders Markdown. Nil uses a CommonMark engine.
	Engine MarkdownEngine

	// Normalizer substitutes math spans. Required.
	Normalizer *Normalizer

	// Highlighter post-processes code blocks. Nil leaves them alone.
	Highlighter highlight.Highlighter
}

// Pipeline renders a Markdown document to HTML with typeset math:
// Markdown first, then span normalization, then code highlighting.
type Pipeline struct {
	name        string
	engine      MarkdownEngine
	normalizer  *Normalizer
	highlighter highlight.Highlighter
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Normalizer == nil {
		return nil, ErrNoRenderer
	}

	p := &Pipeline{
		name:        opts.Name,
		engine:      opts.Engine,
		normalizer:  opts.Normalizer,
		highlighter: opts.Highlighter,
	}
	if p.engine == nil {
		p.engine = markdown.New(markdown.FlavorCommonMark)
	}
	if p.highlighter == nil {
		p.highlighter = highlight.Noop{}
	}
	if p.name == "" {
		p.name = opts.Normalizer.Renderer().Name()
	}
	return p, nil
}

// FromConfig builds the pipeline described by cfg.
func FromConfig(cfg *config.Config, logger *log.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	renderer, err := mathrender.New(cfg.Renderer, mathrender.Config{
		Command:  cfg.RendererCommand,
		Timeout:  cfg.RendererTimeout,
		ImageURL: cfg.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("math renderer: %w", err)
	}

	return FromRenderer(cfg, renderer, logger)
}

// FromRenderer is FromConfig with an explicit math renderer.
func FromRenderer(cfg *config.Config, renderer mathrender.Renderer, logger *log.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	table, err := MacroTable(cfg)
	if err != nil {
		return nil, err
	}

	normalizer, err := NewNormalizer(NormalizerOptions{
		Renderer:    renderer,
		Macros:      table,
		Passthrough: cfg.Passthrough,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return NewPipeline(PipelineOptions{
		Engine:      markdown.New(string(cfg.Flavor)),
		Normalizer:  normalizer,
		Highlighter: highlight.New(cfg.Highlight),
	})
}

// MacroTable returns the built-in macros merged with those in cfg.
func MacroTable(cfg *config.Config) (macros.Table, error) {
	if cfg == nil || len(cfg.Macros) == 0 {
		return macros.Default(), nil
	}

	overrides, err := macros.Parse(cfg.Macros)
	if err != nil {
		return nil, fmt.Errorf("config macros: %w", err)
	}
	return macros.Merge(macros.Default(), overrides), nil
}

// Name returns the pipeline's label.
func (p *Pipeline) Name() string {
	return p.name
}

// Normalizer returns the pipeline's span normalizer.
func (p *Pipeline) Normalizer() *Normalizer {
	return p.normalizer
}

// RenderDocument renders raw Markdown to HTML.
func (p *Pipeline) RenderDocument(ctx context.Context, raw string) (string, error) {
	result, err := p.Render(ctx, raw, nil)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}

// Render renders raw Markdown to HTML with per-call macro overrides and
// reports span statistics.
func (p *Pipeline) Render(ctx context.Context, raw string, overrides macros.Table) (Result, error) {
	doc, err := p.engine.Render(ctx, raw)
	if err != nil {
		return Result{}, fmt.Errorf("markdown: %w", err)
	}

	result := p.normalizer.Process(ctx, doc, overrides)
	result.HTML = p.highlighter.Highlight(result.HTML)
	return result, nil
}

// WithLogger returns a copy of logger tagged with the pipeline name.
func (p *Pipeline) WithLogger(logger *log.Logger) *log.Logger {
	if logger == nil {
		logger = logging.Discard()
	}
	return logger.With(logging.FieldRenderer, p.name)
}
