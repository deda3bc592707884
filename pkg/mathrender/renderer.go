// Package mathrender turns canonical LaTeX bodies into HTML fragments.
//
// Every Renderer is stateless between calls and safe for concurrent use.
package mathrender

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/yaklabco/gomdmath/pkg/macros"
)

// Renderer names accepted by New.
const (
	NameKaTeX  = "katex"
	NameClient = "client"
	NameImage  = "image"
)

var (
	// ErrUnknownRenderer is returned by New for an unrecognized name.
	ErrUnknownRenderer = errors.New("unknown math renderer")

	// ErrRender wraps every failure to render a body.
	ErrRender = errors.New("math render failed")
)

// Renderer renders one math body.
type Renderer interface {
	// Name identifies the renderer in logs and reports.
	Name() string

	// Render returns the HTML for body. It fails on input it cannot render
	// rather than producing partial output.
	Render(ctx context.Context, body string, opts Options) (string, error)
}

// Options are the per-call render options.
type Options struct {
	// DisplayMode renders the body as a centered block.
	DisplayMode bool

	// Macros are applied to the body. Renderers that cannot pass them to
	// their back end expand them first.
	Macros macros.Table

	// Passthrough holds back-end specific settings, such as extra katex
	// flags or data attributes for client-side rendering.
	Passthrough map[string]string
}

// passthroughKeys returns the valid passthrough keys in sorted order.
// Keys failing ValidPassthroughKey are dropped.
func (o Options) passthroughKeys() []string {
	keys := lo.Filter(lo.Keys(o.Passthrough), func(key string, _ int) bool {
		return ValidPassthroughKey(key)
	})
	sort.Strings(keys)
	return keys
}

// ValidPassthroughKey reports whether key is a lowercase option name made
// of letters and inner hyphens, such as "max-size".
func ValidPassthroughKey(key string) bool {
	if key == "" || key[0] == '-' || key[len(key)-1] == '-' {
		return false
	}
	for _, c := range key {
		if (c < 'a' || c > 'z') && c != '-' {
			return false
		}
	}
	return true
}

// Config selects and configures a renderer in New.
type Config struct {
	// Command is the katex executable, optionally with leading arguments
	// (for example "npx katex").
	Command string

	// Timeout bounds a single katex invocation. Zero means no limit.
	Timeout time.Duration

	// ImageURL is the image service prefix for the image renderer.
	ImageURL string
}

// Names returns the renderer names accepted by New.
func Names() []string {
	return []string{NameKaTeX, NameClient, NameImage}
}

// New returns the renderer called name.
func New(name string, cfg Config) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameKaTeX:
		return NewKaTeX(cfg.Command, cfg.Timeout), nil
	case NameClient, "":
		return NewClient(), nil
	case NameImage:
		return NewImage(cfg.ImageURL), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownRenderer, name, strings.Join(Names(), ", "))
	}
}

// checkBraces fails when body has unbalanced braces.
func checkBraces(body string) error {
	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unexpected '}' at offset %d", ErrRender, i)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed '{'", ErrRender, depth)
	}
	return nil
}
