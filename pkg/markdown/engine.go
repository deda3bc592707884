// Package markdown converts Markdown to HTML with goldmark, leaving math
// sources in the output verbatim so they can be found and rendered later.
package markdown

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Supported Markdown flavors.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Engine renders Markdown documents to HTML.
type Engine struct {
	flavor string
	md     goldmark.Markdown
}

// New creates an engine for the given flavor. Unknown flavors fall back to
// CommonMark.
func New(flavor string) *Engine {
	f := flavorOrDefault(flavor)
	return &Engine{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (e *Engine) Flavor() string {
	return e.flavor
}

// Render converts raw Markdown to HTML.
func (e *Engine) Render(ctx context.Context, raw string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("render cancelled: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(raw) + len(raw)/2)
	if err := e.md.Convert([]byte(raw), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// IsValidFlavor reports whether flavor names a supported flavor.
func IsValidFlavor(flavor string) bool {
	return flavor == FlavorCommonMark || flavor == FlavorGFM
}

func flavorOrDefault(flavor string) string {
	if IsValidFlavor(flavor) {
		return flavor
	}
	return FlavorCommonMark
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	exts := []goldmark.Extender{Math}
	if flavor == FlavorGFM {
		exts = append(exts, extension.GFM)
	}

	return goldmark.New(goldmark.WithExtensions(exts...))
}
