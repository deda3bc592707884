// Package render ties the Markdown engine, the math span normalizer and the
// highlighter into pipelines, streaming sessions and back-end comparisons.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"github.com/yaklabco/gomdmath/internal/logging"
	"github.com/yaklabco/gomdmath/pkg/macros"
	"github.com/yaklabco/gomdmath/pkg/mathrender"
	"github.com/yaklabco/gomdmath/pkg/mathspan"
	"github.com/yaklabco/gomdmath/pkg/splice"
)

var (
	// ErrNoRenderer is returned when a normalizer is built without a math
	// renderer.
	ErrNoRenderer = errors.New("no math renderer configured")

	// ErrSessionClosed is returned by writes to a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// Marker classes on substituted fragments.
const (
	ClassRendered = "math-rendered"
	ClassFallback = "math-fallback"
	ClassInline   = "math-inline"
	ClassDisplay  = "math-display"
)

// ErrorHandler observes spans whose rendering failed.
type ErrorHandler func(span mathspan.Span, err error)

// NormalizerOptions configures a Normalizer.
type NormalizerOptions struct {
	// Renderer renders canonical math bodies. Required.
	Renderer mathrender.Renderer

	// Macros is the base macro table. Nil uses macros.Default().
	Macros macros.Table

	// Passthrough is handed to the renderer on every call.
	Passthrough map[string]string

	// Logger receives a warning for every failed span. Nil discards.
	Logger *log.Logger

	// OnError is called for every failed span.
	OnError ErrorHandler
}

// Normalizer finds math spans in HTML, renders them, and substitutes the
// resulting fragments. It is safe for concurrent use when its renderer is.
type Normalizer struct {
	renderer    mathrender.Renderer
	macros      macros.Table
	passthrough map[string]string
	logger      *log.Logger
	onError     ErrorHandler
}

// Result is the outcome of one normalization pass.
type Result struct {
	HTML   string
	Spans  int
	Failed int
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts NormalizerOptions) (*Normalizer, error) {
	if opts.Renderer == nil {
		return nil, ErrNoRenderer
	}

	table := opts.Macros
	if table == nil {
		table = macros.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Normalizer{
		renderer:    opts.Renderer,
		macros:      table,
		passthrough: opts.Passthrough,
		logger:      logger,
		onError:     opts.OnError,
	}, nil
}

// Renderer returns the math renderer.
func (n *Normalizer) Renderer() mathrender.Renderer {
	return n.renderer
}

// Normalize replaces every math span in doc with a rendered fragment.
// overrides are merged over the base macro table for this call only.
//
// Spans that fail to render become fallback fragments; Normalize never
// fails. Fragments carry marker classes, so running Normalize on its own
// output changes nothing.
func (n *Normalizer) Normalize(ctx context.Context, doc string, overrides macros.Table) string {
	return n.Process(ctx, doc, overrides).HTML
}

// Process is Normalize with span statistics.
func (n *Normalizer) Process(ctx context.Context, doc string, overrides macros.Table) Result {
	spans := mathspan.Find(doc)
	if len(spans) == 0 {
		return Result{HTML: doc}
	}

	table := n.macros
	if len(overrides) > 0 {
		table = macros.Merge(n.macros, overrides)
	}

	result := Result{Spans: len(spans)}
	builder := splice.NewBuilder()
	for _, span := range spans {
		span = mathspan.Canonicalize(span)

		fragment, err := n.renderer.Render(ctx, span.CanonicalBody, mathrender.Options{
			DisplayMode: span.Display,
			Macros:      table,
			Passthrough: n.passthrough,
		})
		if err != nil {
			result.Failed++
			n.report(span, err)
			fragment = Fallback(span)
		} else {
			fragment = Wrap(fragment, span.Display)
		}
		builder.Replace(span.Start, span.End, fragment)
	}

	out, err := splice.Splice(doc, builder.Edits)
	if err != nil {
		// Find returns disjoint, in-range spans, so this means a bug.
		n.logger.Error("substituting math spans", logging.FieldError, err)
		return Result{HTML: doc, Spans: result.Spans, Failed: result.Spans}
	}
	result.HTML = out
	return result
}

func (n *Normalizer) report(span mathspan.Span, err error) {
	n.logger.Warn("math render failed",
		logging.FieldRenderer, n.renderer.Name(),
		logging.FieldStyle, span.Style.String(),
		logging.FieldBody, span.CanonicalBody,
		logging.FieldError, err,
	)
	if n.onError != nil {
		n.onError(span, err)
	}
}

// Wrap wraps a rendered fragment in its marker element. Display math is a
// block-styled span so it stays valid inside paragraphs.
func Wrap(fragment string, display bool) string {
	if display {
		return fmt.Sprintf(`<span class="%s %s" style="display:block">%s</span>`, ClassRendered, ClassDisplay, fragment)
	}
	return fmt.Sprintf(`<span class="%s %s">%s</span>`, ClassRendered, ClassInline, fragment)
}

// Fallback returns the fragment shown in place of a span that failed to
// render: its escaped body in a fallback marker element.
func Fallback(span mathspan.Span) string {
	body := html.EscapeString(html.UnescapeString(strings.TrimSpace(span.RawBody)))
	if span.Display {
		return fmt.Sprintf(`<span class="%s %s" style="display:block;text-align:center">%s</span>`,
			ClassFallback, ClassDisplay, body)
	}
	return fmt.Sprintf(`<span class="%s %s">%s</span>`, ClassFallback, ClassInline, body)
}
