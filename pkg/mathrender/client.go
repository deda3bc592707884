package mathrender

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Client emits markup for a browser-side math library to typeset. Macros
// are expanded before the body is written out.
type Client struct{}

// NewClient creates a Client renderer.
func NewClient() *Client {
	return &Client{}
}

// Name implements Renderer.
func (c *Client) Name() string {
	return NameClient
}

// Render implements Renderer.
func (c *Client) Render(_ context.Context, body string, opts Options) (string, error) {
	if err := checkBraces(body); err != nil {
		return "", err
	}

	expanded, err := opts.Macros.Expand(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	var b strings.Builder
	if opts.DisplayMode {
		b.WriteString(`<code class="language-math display"`)
	} else {
		b.WriteString(`<code class="language-math"`)
	}
	for _, key := range opts.passthroughKeys() {
		fmt.Fprintf(&b, ` data-%s="%s"`, html.EscapeString(key), html.EscapeString(opts.Passthrough[key]))
	}
	b.WriteByte('>')
	b.WriteString(html.EscapeString(expanded))
	b.WriteString(`</code>`)
	return b.String(), nil
}
