package config

import (
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every option with its default value.
	// If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return []byte(fullTemplate), nil
	}
	return []byte(minimalTemplate), nil
}

const minimalTemplate = `# gomdmath configuration
# See: https://github.com/yaklabco/gomdmath

# Markdown flavor: commonmark or gfm
flavor: commonmark

# Math back-end: client, katex or image
renderer: client

# Extra macros merged over the built-in table
# macros:
#   \RR: \mathbb{R}
#   \vec: \mathbf{#1}

# File patterns to ignore (glob patterns)
# ignore:
#   - "vendor/**"
#   - "node_modules/**"
`

const fullTemplate = `# gomdmath configuration - Full Template
# See: https://github.com/yaklabco/gomdmath
#
# Every option is shown with its default value.

# Markdown flavor: commonmark or gfm
flavor: commonmark

# Math back-end: client, katex or image
renderer: client

# Command line of the katex back-end (read from stdin, write HTML to stdout)
renderer_command: katex

# Upper bound for one katex call; 0 disables the limit
renderer_timeout: 10s

# URL prefix of the image back-end
image_url: https://latex.codecogs.com/svg.latex?

# Extra macros merged over the built-in table
macros: {}

# Options handed to the math back-end unchanged
passthrough: {}

# Streaming: flush plain text every N characters (0 disables)
flush_every: 3

# Code highlighting: none or tag
highlight: tag

# Directory for rendered files (empty writes next to the source)
output_dir: ""

# Number of parallel workers (0 = auto based on CPU cores)
jobs: 0

# Output format: text, table or json
format: text

# File patterns to ignore (glob patterns)
ignore:
  - "vendor/**"
  - "node_modules/**"
  - ".git/**"
`

// templateToJSON renders the default configuration as JSON.
func templateToJSON() ([]byte, error) {
	cfg := NewConfig()
	doc := map[string]any{
		"flavor":           cfg.Flavor,
		"renderer":         cfg.Renderer,
		"renderer_timeout": cfg.RendererTimeout.String(),
		"macros":           map[string]string{},
		"passthrough":      map[string]string{},
		"flush_every":      cfg.StreamFlushEvery(),
		"highlight":        cfg.Highlight,
		"jobs":             cfg.Jobs,
		"format":           cfg.Format,
		"ignore":           []string{"vendor/**", "node_modules/**", ".git/**"},
	}

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return jsonBytes, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# gomdmath configuration
# See: https://github.com/yaklabco/gomdmath`
}
