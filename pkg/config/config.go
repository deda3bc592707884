// Package config defines core configuration types for gomdmath.
// These types are pure data structures; loading and layering live in
// internal/configloader.
package config

import "time"

// OutputFormat specifies the output format for batch results.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Defaults applied by NewConfig.
const (
	DefaultRenderer        = "client"
	DefaultHighlight       = "tag"
	DefaultFlushEvery      = 3
	DefaultRendererTimeout = 10 * time.Second
)

// Config is the root configuration structure for gomdmath.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor"`

	// Renderer names the math back-end: katex, client or image.
	Renderer string `mapstructure:"renderer" yaml:"renderer"`

	// RendererCommand is the command line of the katex back-end.
	RendererCommand string `mapstructure:"renderer_command" yaml:"renderer_command,omitempty"`

	// RendererTimeout bounds a single katex invocation. Zero means no limit.
	RendererTimeout time.Duration `mapstructure:"renderer_timeout" yaml:"renderer_timeout,omitempty"`

	// ImageURL is the URL prefix of the image back-end.
	ImageURL string `mapstructure:"image_url" yaml:"image_url,omitempty"`

	// Macros are merged over the built-in macro table, keyed by name with
	// the leading backslash.
	Macros map[string]string `mapstructure:"macros" yaml:"macros,omitempty"`

	// Passthrough options are handed to the math renderer unchanged.
	Passthrough map[string]string `mapstructure:"passthrough" yaml:"passthrough,omitempty"`

	// FlushEvery is the streaming text flush cadence. Nil means the default;
	// zero disables cadence flushes.
	FlushEvery *int `mapstructure:"flush_every" yaml:"flush_every,omitempty"`

	// Highlight names the code highlighter: none or tag.
	Highlight string `mapstructure:"highlight" yaml:"highlight"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty"`

	// OutputDir receives rendered files. Empty writes next to the source.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`

	// Jobs specifies the number of parallel workers. Zero means GOMAXPROCS.
	Jobs int `mapstructure:"jobs" yaml:"jobs,omitempty"`

	// Format specifies the output format of batch results.
	Format OutputFormat `mapstructure:"format" yaml:"format,omitempty"`

	// CLI-level options (not persisted to config files).

	// Stdout writes rendered HTML to standard output instead of files.
	Stdout bool `mapstructure:"-" yaml:"-"`

	// Force rewrites outputs even when their content is unchanged.
	Force bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	flushEvery := DefaultFlushEvery
	return &Config{
		Flavor:          FlavorCommonMark,
		Renderer:        DefaultRenderer,
		RendererTimeout: DefaultRendererTimeout,
		FlushEvery:      &flushEvery,
		Highlight:       DefaultHighlight,
		Format:          FormatText,
		Jobs:            0, // 0 means use GOMAXPROCS
	}
}

// StreamFlushEvery returns the effective flush cadence.
func (c *Config) StreamFlushEvery() int {
	if c == nil || c.FlushEvery == nil {
		return DefaultFlushEvery
	}
	return *c.FlushEvery
}
